package orders

import (
	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
)

// Plan is everything a status change writes, computed before any write.
type Plan struct {
	From, To  Status
	Direction Direction

	// Inventory is the stock after the change; only meaningful when
	// InventoryChanged is set.
	Inventory        inventory.Record
	InventoryChanged bool
	Clamped          bool

	// CreditReferral is set on the first arrival at entregado of an order
	// that carries a referral code.
	CreditReferral bool
	Credit         referral.Credit
}

// Reconcile plans moving o to status to. hasInventory is false when the
// stock row does not exist yet; stock is then left alone.
func Reconcile(o Order, to Status, inv inventory.Record, hasInventory bool) Plan {
	p := Plan{From: o.Estado, To: to, Direction: Effect(o.Estado, to), Inventory: inv}

	if hasInventory {
		switch p.Direction {
		case Take:
			p.Inventory, p.Clamped = inv.Take(o.MaxiVasos, o.Bolsas)
			p.InventoryChanged = true
		case Restore:
			p.Inventory = inv.Restore(o.MaxiVasos, o.Bolsas)
			p.InventoryChanged = true
		}
	}

	if to == StatusDelivered && o.Estado != StatusDelivered && o.CodigoReferido != "" {
		p.CreditReferral = true
		p.Credit = referral.CreditFor(referral.Units{MaxiVasos: o.MaxiVasos, Bolsas: o.Bolsas}, o.Total)
	}
	return p
}
