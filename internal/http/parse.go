package http

import (
	"strconv"
	"strings"
	"unicode"
)

// parseIDPrefix reads an integer the way a lenient browser parseInt does:
// leading whitespace and one sign are skipped, then the longest run of
// decimal digits is used and anything after it is ignored. "7abc" is 7.
func parseIDPrefix(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
