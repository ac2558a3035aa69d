package orders

import "time"

type Kind string

const (
	KindImmediate Kind = "inmediato"
	KindScheduled Kind = "futuro"
)

// DateLayout is the format of fechaEntrega.
const DateLayout = "2006-01-02"

// Immediate holds the fields only same-day orders carry.
type Immediate struct {
	Ubicacion   string
	HoraEntrega string
	ImagenURL   string
}

// Scheduled holds the fields only encargos carry.
type Scheduled struct {
	FechaEntrega string // YYYY-MM-DD, shop time zone
	Comentarios  string
}

// Details is the part of an order that depends on its kind. Exactly one of
// Immediate and Scheduled is set.
type Details struct {
	Kind      Kind
	Immediate *Immediate
	Scheduled *Scheduled
}

// Draft is an order as submitted, before pricing.
type Draft struct {
	ExternalID     string
	Nombre         string
	Telefono       string
	MaxiVasos      int
	Bolsas         int
	CodigoReferido string
	Details
}

type Order struct {
	ID                     string
	ExternalID             string
	Nombre                 string
	Telefono               string
	MaxiVasos              int
	Bolsas                 int
	CodigoReferido         string
	CodigoReferidoValidado bool
	Descuento              int
	Total                  int
	Estado                 Status
	Fecha                  time.Time
	Details
}

// Receipt is returned to the customer after submission.
type Receipt struct {
	OrderID    string `json:"orderId"`
	Total      int    `json:"total"`
	Descuento  int    `json:"descuento"`
	Estado     Status `json:"estado"`
	Idempotent bool   `json:"idempotent"`
}

func (o Order) Receipt(idempotent bool) Receipt {
	return Receipt{OrderID: o.ID, Total: o.Total, Descuento: o.Descuento, Estado: o.Estado, Idempotent: idempotent}
}
