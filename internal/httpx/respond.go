package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps domain errors to status codes. Anything unknown is a
// store or network failure the customer can retry.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *orders.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, referral.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Código de referido inválido", Field: "codigoReferido"})
	case errors.Is(err, referral.ErrSelfReferral):
		writeJSON(w, http.StatusConflict, errorBody{Error: "No puedes usar tu propio código de referido", Field: "codigoReferido"})
	case errors.Is(err, referral.ErrCodeTooLong):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "El código de referido debe tener máximo 5 caracteres", Field: "codigoReferido"})
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Pedido no encontrado"})
	case errors.Is(err, inventory.ErrNegative):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Las cantidades no pueden ser negativas"})
	case errors.Is(err, inventory.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "network error"})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Hubo un error, inténtalo de nuevo"})
	}
}
