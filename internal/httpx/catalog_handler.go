package httpx

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/saboru/saboru-backend/internal/store"
)

type CatalogHandler struct {
	DB *sql.DB
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Post("/users", h.createUser)
	r.Get("/users/{id}", h.getUser)
	r.Post("/providers", h.createProvider)
	r.Get("/providers", h.listProviders)
	r.Put("/providers/{id}/status", h.updateProviderStatus)
	r.Post("/dishes", h.createDish)
	r.Get("/dishes/{id}", h.getDish)
	r.Get("/providers/{id}/dishes", h.listDishes)
	r.Get("/inventory", h.getInventory)
	r.Post("/inventory/adjust", h.adjustInventory)
	r.Get("/inventory/log", h.listInventoryLog)
}

func (h *CatalogHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"nombre_completo"`
		Email    string `json:"email"`
		Address  string `json:"direccion_habitacion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	user, err := store.CreateUser(ctx, h.DB, req.FullName, req.Email, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *CatalogHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	user, err := store.GetUser(ctx, h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *CatalogHandler) createProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"nombre_emprendimiento"`
		Address string `json:"direccion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	provider, err := store.CreateProvider(ctx, h.DB, req.Name, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, provider)
}

func (h *CatalogHandler) listProviders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	providers, err := store.ListProviders(ctx, h.DB, r.URL.Query().Get("estado"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (h *CatalogHandler) updateProviderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid provider id"})
		return
	}

	var req struct {
		Status string `json:"estado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := store.UpdateProviderStatus(ctx, h.DB, id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"estado": req.Status})
}

func (h *CatalogHandler) createDish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderID  int64   `json:"provider_id"`
		Name        string  `json:"nombre"`
		Description string  `json:"descripcion"`
		Price       float64 `json:"precio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	dish, err := store.CreateDish(ctx, h.DB, req.ProviderID, req.Name, req.Description, decimal.NewFromFloat(req.Price))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dish)
}

func (h *CatalogHandler) getDish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	dish, err := store.GetDish(ctx, h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *CatalogHandler) listDishes(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid provider id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	dishes, err := store.ListDishes(ctx, h.DB, providerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func inventoryQueryIDs(r *http.Request) (int64, int64, bool) {
	dishID, err1 := strconv.ParseInt(r.URL.Query().Get("dish_id"), 10, 64)
	providerID, err2 := strconv.ParseInt(r.URL.Query().Get("provider_id"), 10, 64)
	return dishID, providerID, err1 == nil && err2 == nil
}

func (h *CatalogHandler) getInventory(w http.ResponseWriter, r *http.Request) {
	dishID, providerID, ok := inventoryQueryIDs(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dish_id and provider_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	record, err := store.GetInventory(ctx, h.DB, dishID, providerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *CatalogHandler) adjustInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DishID     int64  `json:"dish_id"`
		ProviderID int64  `json:"provider_id"`
		Change     int    `json:"cambio"`
		Reason     string `json:"motivo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	record, err := store.AdjustInventory(ctx, h.DB, req.DishID, req.ProviderID, req.Change, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *CatalogHandler) listInventoryLog(w http.ResponseWriter, r *http.Request) {
	dishID, providerID, ok := inventoryQueryIDs(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dish_id and provider_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := store.ListInventoryLog(ctx, h.DB, dishID, providerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
