package orders

import (
	"strings"
	"time"

	"github.com/ariefcatur/go-snack-orders/internal/inventory"
)

// MaxScheduleDays is how far ahead an encargo may be placed.
const MaxScheduleDays = 7

// Validate returns the first rule d breaks, or nil. Rules run in a fixed
// order: name, phone, then the kind-specific checks. Immediate orders are
// capped by inv; encargos are not. now's location defines "today".
func Validate(d Draft, inv inventory.Record, now time.Time) error {
	if strings.TrimSpace(d.Nombre) == "" {
		return invalid("nombre", "El nombre es requerido")
	}
	if err := ValidatePhone(d.Telefono); err != nil {
		return err
	}

	switch d.Kind {
	case KindImmediate:
		var im Immediate
		if d.Immediate != nil {
			im = *d.Immediate
		}
		if strings.TrimSpace(im.Ubicacion) == "" {
			return invalid("ubicacion", "La ubicación es requerida")
		}
		if strings.TrimSpace(im.HoraEntrega) == "" {
			return invalid("horaEntrega", "La hora de entrega es requerida")
		}
		if err := requireProducts(d); err != nil {
			return err
		}
		if d.MaxiVasos > inv.MaxiVasos {
			return invalid("maxiVasos", "No hay suficientes Maxi Vasos disponibles")
		}
		if d.Bolsas > inv.Bolsas {
			return invalid("bolsas", "No hay suficientes Bolsas disponibles")
		}
	case KindScheduled:
		var sc Scheduled
		if d.Scheduled != nil {
			sc = *d.Scheduled
		}
		if strings.TrimSpace(sc.FechaEntrega) == "" {
			return invalid("fechaEntrega", "La fecha de entrega es requerida")
		}
		if err := requireProducts(d); err != nil {
			return err
		}
		if err := validateDeliveryDate(sc.FechaEntrega, now); err != nil {
			return err
		}
	default:
		return invalid("tipoOrden", "Tipo de orden inválido")
	}
	return nil
}

func requireProducts(d Draft) error {
	if d.MaxiVasos <= 0 && d.Bolsas <= 0 {
		return invalid("productos", "Debes seleccionar al menos un producto")
	}
	return nil
}

// validateDeliveryDate accepts calendar days today+1 through today+7.
func validateDeliveryDate(date string, now time.Time) error {
	loc := now.Location()
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return invalid("fechaEntrega", "La fecha de entrega no es válida")
	}
	y, m, dd := now.Date()
	today := time.Date(y, m, dd, 0, 0, 0, 0, loc)
	first, last := today.AddDate(0, 0, 1), today.AddDate(0, 0, MaxScheduleDays)
	if day.Before(first) || day.After(last) {
		return invalid("fechaEntrega", "La fecha de entrega debe estar entre mañana y los próximos 7 días")
	}
	return nil
}
