package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the Event* consts
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "snack-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	Order Document `json:"order"`
}

type OrderStatusChangedPayload struct {
	OrderID  string `json:"order_id"`
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
	From     Status `json:"from"`
	To       Status `json:"to"`

	InventoryChanged bool `json:"inventory_changed"`
	MaxiVasosLeft    int  `json:"maxi_vasos_left,omitempty"`
	BolsasLeft       int  `json:"bolsas_left,omitempty"`
	Clamped          bool `json:"clamped,omitempty"`

	ReferralCredited bool   `json:"referral_credited"`
	CodigoReferido   string `json:"codigo_referido,omitempty"`
	PuntosOtorgados  int    `json:"puntos_otorgados,omitempty"`
}

type OrderDeletedPayload struct {
	OrderID   string `json:"order_id"`
	ByAdmin   bool   `json:"by_admin"`
	LastState Status `json:"last_state"`
}
