package httpx

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/saboru/saboru-backend/internal/events"
	kafkax "github.com/saboru/saboru-backend/internal/kafka"
	"github.com/saboru/saboru-backend/internal/store"
)

type DeliveryHandler struct {
	DB            *sql.DB
	RouteProducer *kafkax.Producer
	Service       string
}

func (h *DeliveryHandler) Register(r *chi.Mux) {
	r.Post("/routes", h.createRoute)
	r.Get("/routes", h.listRoutes)
	r.Get("/routes/{id}/items", h.listRouteItems)
	r.Post("/routes/{id}/assign", h.assignRoute)
}

func (h *DeliveryHandler) createRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     time.Time `json:"fecha"`
		Capacity int       `json:"capacidad"`
		Vehicle  string    `json:"vehiculo"`
		Driver   string    `json:"conductor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	route, err := store.CreateRoute(ctx, h.DB, req.Date, req.Capacity, req.Vehicle, req.Driver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

func (h *DeliveryHandler) listRoutes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	routes, err := store.ListRoutes(ctx, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

func (h *DeliveryHandler) listRouteItems(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid route id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := store.ListRouteItems(ctx, h.DB, routeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *DeliveryHandler) assignRoute(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid route id"})
		return
	}

	day := time.Now()
	if d := r.URL.Query().Get("day"); d != "" {
		parsed, perr := time.Parse("2006-01-02", d)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := store.AssignRoute(ctx, h.DB, routeID, day)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.RouteProducer != nil && result.Assigned > 0 {
		ev := events.NewEnvelope(events.EventRouteAssigned, h.Service, events.EncodeID(routeID), events.RouteAssignedPayload{
			RouteID:  routeID,
			OrderIDs: result.AssignedOrderIDs,
		})
		h.RouteProducer.Publish(events.PartitionKey(routeID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(events.EventRouteAssigned)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusOK, result)
}
