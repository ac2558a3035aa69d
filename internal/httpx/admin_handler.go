package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/go-chi/chi/v5"
)

// InventoryStore is implemented by *inventory.Store.
type InventoryStore interface {
	Get(ctx context.Context) (inventory.Record, bool, error)
	Save(ctx context.Context, r inventory.Record) error
}

// AdminHandler serves the shop owner's panel behind basic auth.
type AdminHandler struct {
	Orders    OrderService
	Inventory InventoryStore
	Stock     StockReader

	Email        string
	PasswordHash string
}

type statusReq struct {
	Estado orders.Status `json:"estado"`
}

type transitionResp struct {
	Order            orders.Order     `json:"order"`
	From             orders.Status    `json:"from"`
	To               orders.Status    `json:"to"`
	Inventory        inventory.Record `json:"inventory"`
	InventoryChanged bool             `json:"inventoryChanged"`
	Clamped          bool             `json:"clamped"`
	ReferralCredited bool             `json:"referralCredited"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminAuth(h.Email, h.PasswordHash))
		r.Get("/orders", h.listOrders)
		r.Put("/orders/{id}/estado", h.updateStatus)
		r.Delete("/orders/{id}", h.deleteOrder)
		r.Get("/inventory", h.getInventory)
		r.Put("/inventory", h.putInventory)
	})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.ListAll(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Estado)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResp{
		Order:            t.Order,
		From:             t.Plan.From,
		To:               t.Plan.To,
		Inventory:        t.Plan.Inventory,
		InventoryChanged: t.Plan.InventoryChanged,
		Clamped:          t.Plan.Clamped,
		ReferralCredited: t.ReferralCredited,
	})
}

func (h *AdminHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Orders.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) getInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, found, err := h.Inventory.Get(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inventory.Snapshot{Record: rec, Available: found})
}

// putInventory overwrites the counts, creating the row on first use.
func (h *AdminHandler) putInventory(w http.ResponseWriter, r *http.Request) {
	var rec inventory.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Inventory.Save(ctx, rec); err != nil {
		writeError(w, r, err)
		return
	}
	h.Stock.Invalidate(ctx)
	writeJSON(w, http.StatusOK, inventory.Snapshot{Record: rec, Available: true})
}
