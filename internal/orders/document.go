package orders

import (
	"encoding/json"
	"strings"
	"time"
)

// Document is the flat wire form of an order, with the field names the
// storefront forms have always used.
type Document struct {
	ID                     string     `json:"id,omitempty"`
	ExternalID             string     `json:"externalId,omitempty"`
	Nombre                 string     `json:"nombre"`
	Telefono               string     `json:"telefono"`
	TipoOrden              Kind       `json:"tipoOrden"`
	Ubicacion              string     `json:"ubicacion,omitempty"`
	HoraEntrega            string     `json:"horaEntrega,omitempty"`
	ImagenURL              string     `json:"imagenUrl,omitempty"`
	FechaEntrega           string     `json:"fechaEntrega,omitempty"`
	Comentarios            string     `json:"comentarios,omitempty"`
	MaxiVasos              int        `json:"maxiVasos"`
	Bolsas                 int        `json:"bolsas"`
	CodigoReferido         string     `json:"codigoReferido,omitempty"`
	CodigoReferidoValidado bool       `json:"codigoReferidoValidado"`
	Descuento              int        `json:"descuento"`
	Total                  int        `json:"total"`
	Estado                 Status     `json:"estado,omitempty"`
	Fecha                  *time.Time `json:"fecha,omitempty"`
}

// Draft converts a submitted document into a draft. Only input fields are
// read; prices and status are always computed server side.
func (d Document) Draft() (Draft, error) {
	if d.MaxiVasos < 0 || d.Bolsas < 0 {
		return Draft{}, invalid("cantidades", "Las cantidades no pueden ser negativas")
	}
	out := Draft{
		ExternalID:     strings.TrimSpace(d.ExternalID),
		Nombre:         d.Nombre,
		Telefono:       d.Telefono,
		MaxiVasos:      d.MaxiVasos,
		Bolsas:         d.Bolsas,
		CodigoReferido: d.CodigoReferido,
	}
	switch d.TipoOrden {
	case KindImmediate, "":
		out.Details = Details{Kind: KindImmediate, Immediate: &Immediate{
			Ubicacion:   d.Ubicacion,
			HoraEntrega: d.HoraEntrega,
			ImagenURL:   strings.TrimSpace(d.ImagenURL),
		}}
	case KindScheduled:
		out.Details = Details{Kind: KindScheduled, Scheduled: &Scheduled{
			FechaEntrega: strings.TrimSpace(d.FechaEntrega),
			Comentarios:  strings.TrimSpace(d.Comentarios),
		}}
	default:
		return Draft{}, invalid("tipoOrden", "Tipo de orden inválido")
	}
	return out, nil
}

// Document flattens o for the wire.
func (o Order) Document() Document {
	d := Document{
		ID:                     o.ID,
		ExternalID:             o.ExternalID,
		Nombre:                 o.Nombre,
		Telefono:               o.Telefono,
		TipoOrden:              o.Kind,
		MaxiVasos:              o.MaxiVasos,
		Bolsas:                 o.Bolsas,
		CodigoReferido:         o.CodigoReferido,
		CodigoReferidoValidado: o.CodigoReferidoValidado,
		Descuento:              o.Descuento,
		Total:                  o.Total,
		Estado:                 o.Estado,
	}
	if !o.Fecha.IsZero() {
		f := o.Fecha
		d.Fecha = &f
	}
	if im := o.Immediate; im != nil {
		d.Ubicacion, d.HoraEntrega, d.ImagenURL = im.Ubicacion, im.HoraEntrega, im.ImagenURL
	}
	if sc := o.Scheduled; sc != nil {
		d.FechaEntrega, d.Comentarios = sc.FechaEntrega, sc.Comentarios
	}
	return d
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Document())
}
