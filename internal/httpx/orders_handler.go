package httpx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/saboru/saboru-backend/internal/cart"
	"github.com/saboru/saboru-backend/internal/events"
	kafkax "github.com/saboru/saboru-backend/internal/kafka"
	"github.com/saboru/saboru-backend/internal/qr"
	"github.com/saboru/saboru-backend/internal/redisx"
	"github.com/saboru/saboru-backend/internal/store"
)

type OrdersHandler struct {
	DB            *sql.DB
	Redis         *redis.Client
	OrderProducer *kafkax.Producer
	Service       string
}

type placeOrderRequest struct {
	UserID          int64       `json:"user_id"`
	ProviderID      int64       `json:"provider_id,omitempty"`
	DeliveryAddress string      `json:"delivery_address"`
	ExternalRef     string      `json:"external_ref,omitempty"`
	Items           []cart.Item `json:"items"`
}

type placeOrderResponse struct {
	OrderID    int64  `json:"order_id"`
	OrderRef   string `json:"order_ref"`
	Total      string `json:"total"`
	Status     string `json:"status"`
	Idempotent bool   `json:"idempotent"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Get("/orders/{id}/events", h.listOrderEvents)
	r.Get("/orders/{id}/qr", h.getOrderQR)
	r.Get("/users/{id}/orders", h.listUserOrders)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// Local validation before any database work.
	c := cart.Cart{Items: req.Items}
	if err := c.Validate(); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items := make([]store.OrderItemRequest, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, store.OrderItemRequest{DishID: item.DishID, Quantity: item.Quantity})
	}

	order, existed, err := store.PlaceOrder(ctx, h.DB, store.PlaceOrderRequest{
		UserID:          req.UserID,
		ProviderID:      req.ProviderID,
		DeliveryAddress: req.DeliveryAddress,
		ExternalRef:     req.ExternalRef,
		Items:           items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Post-commit extras are best-effort: the order stands even if the
	// cache, the QR render, or the event publish fails.
	if req.ExternalRef != "" {
		idemKey := fmt.Sprintf(redisx.KeyIdemOrderPlace, req.ExternalRef)
		_ = h.Redis.Set(ctx, idemKey, order.ID, redisx.TTLIdempotency).Err()
	}
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
	_ = h.Redis.Set(ctx, statusKey, fmt.Sprintf(`{"status":%q}`, order.Status), redisx.TTLStatusCache).Err()

	if !existed {
		if png, qrErr := qr.ForOrder(order.OrderRef); qrErr != nil {
			log.Printf("render pickup qr for order %d: %v", order.ID, qrErr)
		} else if saveErr := store.SaveOrderQR(ctx, h.DB, order.ID, png); saveErr != nil {
			log.Printf("save pickup qr for order %d: %v", order.ID, saveErr)
		}

		h.publishOrderCreated(order.ID, req, order.OrderRef, order.Total, order.ProviderID)
	}

	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, placeOrderResponse{
		OrderID:    order.ID,
		OrderRef:   order.OrderRef,
		Total:      order.Total.String(),
		Status:     order.Status,
		Idempotent: existed,
	})
}

func (h *OrdersHandler) publishOrderCreated(orderID int64, req placeOrderRequest, orderRef string, total decimal.Decimal, providerID int64) {
	if h.OrderProducer == nil {
		return
	}

	lines := make([]events.ItemLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, events.ItemLine{
			DishID:    item.DishID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	ev := events.NewEnvelope(events.EventOrderCreated, h.Service, events.EncodeID(orderID), events.OrderCreatedPayload{
		OrderID:         orderID,
		OrderRef:        orderRef,
		UserID:          req.UserID,
		ProviderID:      providerID,
		Total:           total,
		DeliveryAddress: req.DeliveryAddress,
		Items:           lines,
	})

	h.OrderProducer.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := store.GetOrder(ctx, h.DB, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	status, err := store.GetOrderStatus(ctx, h.DB, orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	body, _ := json.Marshal(map[string]string{"status": status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}

func (h *OrdersHandler) listOrderEvents(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := store.ListOrderEvents(ctx, h.DB, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrderQR(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	png, err := store.GetOrderQR(ctx, h.DB, orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *OrdersHandler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	page, err := store.ListOrdersCursor(ctx, h.DB, userID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
