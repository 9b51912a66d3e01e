package domain

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	// OrderStatusPending is the only status assigned today; no transitions are defined yet.
	OrderStatusPending OrderStatus = "pending"
)

// OrderItem is the line snapshot this module's clients send when placing an
// order. It does not follow later catalog changes. The server stores items
// exactly as posted, so other shapes survive unchanged.
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID           int64             `json:"id"`
	Items        []json.RawMessage `json:"items"`
	CustomerInfo json.RawMessage   `json:"customerInfo,omitempty"`
	Total        float64           `json:"total"`
	Status       OrderStatus       `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
}

// PlaceOrderRequest is the body of POST /api/orders.
type PlaceOrderRequest struct {
	Items        []json.RawMessage `json:"items"`
	CustomerInfo json.RawMessage   `json:"customerInfo,omitempty"`
	Total        float64           `json:"total"`
}

// EncodeItems turns typed lines into the raw form orders carry.
func EncodeItems(items []OrderItem) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeItems reads raw items back as OrderItem. Fields of other shapes are
// ignored.
func DecodeItems(raw []json.RawMessage) ([]OrderItem, error) {
	out := make([]OrderItem, 0, len(raw))
	for _, r := range raw {
		var it OrderItem
		if err := json.Unmarshal(r, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

type PlaceOrderResponse struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}
