package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
	"github.com/go-chi/chi/v5"
)

// OrderService is implemented by *orders.Service.
type OrderService interface {
	Submit(ctx context.Context, d orders.Draft) (orders.Receipt, error)
	UpdateStatus(ctx context.Context, id string, to orders.Status) (orders.Transition, error)
	Delete(ctx context.Context, id string) error
	CancelByCustomer(ctx context.Context, id, phone string) error
	StatusOf(ctx context.Context, id string) (orders.Status, error)
	ListAll(ctx context.Context) ([]orders.Order, error)
	ListByPhone(ctx context.Context, phone string) ([]orders.Order, error)
}

// StockReader is implemented by *inventory.Reader.
type StockReader interface {
	Current(ctx context.Context) (inventory.Snapshot, error)
	Invalidate(ctx context.Context)
}

// ReferralFinder is implemented by *referral.Repo.
type ReferralFinder interface {
	Lookup(ctx context.Context, code string) (referral.Referrer, error)
}

// OrdersHandler serves the customer storefront.
type OrdersHandler struct {
	Orders    OrderService
	Stock     StockReader
	Referrals ReferralFinder
}

type statusResp struct {
	OrderID string        `json:"orderId"`
	Estado  orders.Status `json:"estado"`
	Label   string        `json:"etiqueta"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Delete("/orders/{id}", h.cancelOrder)
	r.Get("/inventory", h.getInventory)
	r.Get("/referidos/{code}", h.getReferrer)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var doc orders.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}
	draft, err := doc.Draft()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if key := r.Header.Get("Idempotency-Key"); draft.ExternalID == "" && key != "" {
		draft.ExternalID = key
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rcpt, err := h.Orders.Submit(ctx, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusCreated
	if rcpt.Idempotent {
		code = http.StatusOK
	}
	writeJSON(w, code, rcpt)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Orders.ListByPhone(ctx, r.URL.Query().Get("telefono"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Orders.StatusOf(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResp{OrderID: id, Estado: st, Label: st.Label()})
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Orders.CancelByCustomer(ctx, chi.URLParam(r, "id"), r.URL.Query().Get("telefono")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) getInventory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Stock.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *OrdersHandler) getReferrer(w http.ResponseWriter, r *http.Request) {
	code, err := referral.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil || code == "" {
		writeError(w, r, referral.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ref, err := h.Referrals.Lookup(ctx, code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, referral.Summarize(ref))
}

func nonNil(list []orders.Order) []orders.Order {
	if list == nil {
		return []orders.Order{}
	}
	return list
}
