package cart

import "github.com/fjod/pixelwick/internal/domain"

type EventKind int

const (
	// EventAdded carries the added product and a notification message.
	EventAdded EventKind = iota + 1
	// EventChanged means the cart contents should be re-rendered.
	EventChanged
	EventCleared
	EventOrderPlaced
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventChanged:
		return "changed"
	case EventCleared:
		return "cleared"
	case EventOrderPlaced:
		return "order_placed"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind    EventKind
	Product domain.Product
	OrderID int64
	// Message is set for events the user should be notified about.
	Message string
}
