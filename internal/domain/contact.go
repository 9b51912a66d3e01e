package domain

import "time"

type ContactSubmission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Complete reports whether every field is non-empty.
func (r ContactRequest) Complete() bool {
	return r.Name != "" && r.Email != "" && r.Subject != "" && r.Message != ""
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
