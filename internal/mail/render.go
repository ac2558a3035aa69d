// Package mail turns order events into notification documents for the
// external email dispatcher.
package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cop = message.NewPrinter(language.Spanish)

// COP formats an amount the way the storefront shows prices ("$18.000").
func COP(amount int) string {
	return cop.Sprintf("$%d", amount)
}

var createdTmpl = template.Must(template.New("created").Funcs(template.FuncMap{"cop": COP}).Parse(`
<h2>Nuevo pedido</h2>
<p><b>{{.Nombre}}</b> ({{.Telefono}})</p>
<ul>
{{- if gt .MaxiVasos 0}}<li>{{.MaxiVasos}} Maxi Vasos</li>{{end}}
{{- if gt .Bolsas 0}}<li>{{.Bolsas}} Bolsas</li>{{end}}
</ul>
{{- if eq .TipoOrden "futuro"}}
<p>Encargo para el {{.FechaEntrega}}{{if .Comentarios}}: <i>{{.Comentarios}}</i>{{end}}</p>
{{- else}}
<p>Entregar en {{.Ubicacion}} a las {{.HoraEntrega}}</p>
{{- if .ImagenURL}}<p><a href="{{.ImagenURL}}">Ver imagen de ubicación</a></p>{{end}}
{{- end}}
{{- if .CodigoReferido}}<p>Código de referido: {{.CodigoReferido}} (descuento {{cop .Descuento}})</p>{{end}}
<p><b>Total: {{cop .Total}}</b></p>
`))

var statusTmpl = template.Must(template.New("status").Parse(`
<p>El pedido de <b>{{.Nombre}}</b> pasó de {{.From}} a <b>{{.To}}</b>.</p>
{{- if .InventoryChanged}}<p>Inventario: {{.MaxiVasos}} Maxi Vasos, {{.Bolsas}} Bolsas.</p>{{end}}
{{- if .Clamped}}<p>Atención: el inventario no alcanzaba y quedó en cero.</p>{{end}}
{{- if .Credited}}<p>Referido {{.Codigo}} recibió {{.Puntos}} puntos.</p>{{end}}
`))

// Render builds subject and body for an event. ok is false for events
// that produce no mail.
func Render(env orders.Envelope) (subject, html string, ok bool, err error) {
	var buf bytes.Buffer
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := decode[orders.OrderCreatedPayload](env)
		if err != nil {
			return "", "", false, err
		}
		if err := createdTmpl.Execute(&buf, p.Order); err != nil {
			return "", "", false, err
		}
		kind := "Pedido"
		if p.Order.TipoOrden == orders.KindScheduled {
			kind = "Encargo"
		}
		return fmt.Sprintf("%s nuevo de %s - %s", kind, p.Order.Nombre, COP(p.Order.Total)), buf.String(), true, nil

	case orders.EventOrderStatusChanged:
		p, err := decode[orders.OrderStatusChangedPayload](env)
		if err != nil {
			return "", "", false, err
		}
		err = statusTmpl.Execute(&buf, map[string]any{
			"Nombre":           p.Nombre,
			"From":             p.From.Label(),
			"To":               p.To.Label(),
			"InventoryChanged": p.InventoryChanged,
			"MaxiVasos":        p.MaxiVasosLeft,
			"Bolsas":           p.BolsasLeft,
			"Clamped":          p.Clamped,
			"Credited":         p.ReferralCredited,
			"Codigo":           p.CodigoReferido,
			"Puntos":           p.PuntosOtorgados,
		})
		if err != nil {
			return "", "", false, err
		}
		return fmt.Sprintf("Pedido de %s: %s", p.Nombre, p.To.Label()), buf.String(), true, nil

	case orders.EventOrderDeleted:
		p, err := decode[orders.OrderDeletedPayload](env)
		if err != nil {
			return "", "", false, err
		}
		who := "el cliente"
		if p.ByAdmin {
			who = "el administrador"
		}
		body := fmt.Sprintf("<p>El pedido %s (%s) fue eliminado por %s.</p>",
			template.HTMLEscapeString(p.OrderID), template.HTMLEscapeString(p.LastState.Label()), who)
		return "Pedido eliminado", body, true, nil
	}
	return "", "", false, nil
}
