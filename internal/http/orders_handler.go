package http

import (
	"context"
	"net/http"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/events"
	"github.com/rs/zerolog/hlog"
)

type OrderStore interface {
	Create(ctx context.Context, order domain.Order) error
	List(ctx context.Context) []domain.Order
}

type OrdersHandler struct {
	orders OrderStore
	env    *env
}

func NewOrdersHandler(orders OrderStore, e *env) *OrdersHandler {
	return &OrdersHandler{orders: orders, env: e}
}

// POST /api/orders
func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, r, http.StatusBadRequest, "Cart is empty")
		return
	}

	order := domain.Order{
		ID:           h.env.ids.Next(),
		Items:        req.Items,
		CustomerInfo: req.CustomerInfo,
		Total:        req.Total,
		Status:       domain.OrderStatusPending,
		Timestamp:    h.env.timestamp(),
	}

	if err := h.orders.Create(r.Context(), order); err != nil {
		hlog.FromRequest(r).Error().Err(err).Int64("order_id", order.ID).Msg("failed to save order")
		respondError(w, r, http.StatusInternalServerError, "Failed to save order")
		return
	}

	hlog.FromRequest(r).Info().Int64("order_id", order.ID).Int("items", len(order.Items)).Msg("order placed")
	h.env.recorder.OrderPlaced()
	h.env.publish(r, events.Event{Type: events.TypeOrderPlaced, Key: order.ID, Payload: order})

	respondJSON(w, r, http.StatusOK, domain.PlaceOrderResponse{
		Success: true,
		OrderID: order.ID,
		Message: "Order placed successfully",
	})
}

// GET /api/orders
//
// No authentication is enforced: every order, including customer info, is
// visible to any caller. A real deployment must put an admin check in front
// of this route.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.orders.List(r.Context()))
}
