package orders

import (
	"math/rand"
	"testing"

	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
	"github.com/stretchr/testify/assert"
)

func order(a, b int, st Status) Order {
	return Order{ID: "o", MaxiVasos: a, Bolsas: b, Total: Subtotal(a, b), Estado: st}
}

// apply mimics UpdateStatus on in-memory state.
func apply(o *Order, to Status, inv *inventory.Record, credits map[string]int) Plan {
	p := Reconcile(*o, to, *inv, true)
	if p.InventoryChanged {
		*inv = p.Inventory
	}
	if p.CreditReferral {
		if _, done := credits[o.ID]; !done {
			credits[o.ID] = p.Credit.Puntos
		}
	}
	o.Estado = to
	return p
}

func TestScenarioEnRouteThenCancelled(t *testing.T) {
	o := order(2, 0, StatusPending)
	assert.Equal(t, 20000, o.Total)
	inv := inventory.Record{MaxiVasos: 5}
	credits := map[string]int{}

	p := apply(&o, StatusEnRoute, &inv, credits)
	assert.Equal(t, Take, p.Direction)
	assert.Equal(t, inventory.Record{MaxiVasos: 3}, inv)

	p = apply(&o, StatusCancelled, &inv, credits)
	assert.Equal(t, Restore, p.Direction)
	assert.Equal(t, inventory.Record{MaxiVasos: 5}, inv)
	assert.Empty(t, credits)
}

func TestReconcileNeutralAndCommittedMovesHoldStock(t *testing.T) {
	inv := inventory.Record{MaxiVasos: 4, Bolsas: 4}
	for _, tc := range [][2]Status{
		{StatusPending, StatusScheduled},
		{StatusScheduled, StatusCancelled},
		{StatusEnRoute, StatusDelivered},
		{StatusDelivered, StatusEnRoute},
		{StatusPending, StatusPending},
	} {
		p := Reconcile(order(1, 1, tc[0]), tc[1], inv, true)
		assert.False(t, p.InventoryChanged, "%s -> %s", tc[0], tc[1])
		assert.Equal(t, Hold, p.Direction)
	}
}

func TestReconcileClampsAtZero(t *testing.T) {
	p := Reconcile(order(3, 2, StatusPending), StatusDelivered, inventory.Record{MaxiVasos: 1, Bolsas: 5}, true)
	assert.True(t, p.InventoryChanged)
	assert.True(t, p.Clamped)
	assert.Equal(t, inventory.Record{MaxiVasos: 0, Bolsas: 3}, p.Inventory)
}

func TestReconcileWithoutInventoryRow(t *testing.T) {
	p := Reconcile(order(3, 0, StatusPending), StatusEnRoute, inventory.Record{}, false)
	assert.Equal(t, Take, p.Direction)
	assert.False(t, p.InventoryChanged)
}

func TestReconcileReferralCredit(t *testing.T) {
	o := order(2, 0, StatusEnRoute)
	o.CodigoReferido = "AB12C"
	o.Descuento = 2000
	o.Total = 18000

	p := Reconcile(o, StatusDelivered, inventory.Record{}, true)
	assert.True(t, p.CreditReferral)
	assert.Equal(t, referral.Credit{Puntos: 10, Units: referral.Units{MaxiVasos: 2}}, p.Credit)

	o.Estado = StatusDelivered
	assert.False(t, Reconcile(o, StatusDelivered, inventory.Record{}, true).CreditReferral,
		"entregado -> entregado must not credit again")

	o.CodigoReferido = ""
	o.Estado = StatusPending
	assert.False(t, Reconcile(o, StatusDelivered, inventory.Record{}, true).CreditReferral)
}

func TestReconcileSmallOrderEarnsLowPoints(t *testing.T) {
	o := order(0, 1, StatusPending)
	o.CodigoReferido = "AB12C"
	o.Descuento = referral.Discount(o.Total)
	o.Total -= o.Descuento
	p := Reconcile(o, StatusDelivered, inventory.Record{Bolsas: 1}, true)
	assert.Equal(t, referral.PointsLow, p.Credit.Puntos)
	assert.Equal(t, 1, p.Credit.Bolsas)
}

func TestDeliverTwiceCreditsOnce(t *testing.T) {
	o := order(1, 1, StatusPending)
	o.CodigoReferido = "ZZ9"
	inv := inventory.Record{MaxiVasos: 10, Bolsas: 10}
	credits := map[string]int{}

	first := apply(&o, StatusDelivered, &inv, credits)
	second := apply(&o, StatusDelivered, &inv, credits)
	assert.True(t, first.CreditReferral)
	assert.False(t, second.CreditReferral)
	assert.Len(t, credits, 1)
	assert.Equal(t, inventory.Record{MaxiVasos: 9, Bolsas: 9}, inv)
}

// Any walk of status changes that ends where it started leaves stock
// unchanged as long as nothing was clamped.
func TestInventoryRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		start := inventory.Record{MaxiVasos: 100, Bolsas: 100}
		inv := start
		credits := map[string]int{}

		orders := make([]Order, 1+rng.Intn(4))
		origin := make([]Status, len(orders))
		for j := range orders {
			origin[j] = allStatuses[rng.Intn(len(allStatuses))]
			orders[j] = order(rng.Intn(5), rng.Intn(5), origin[j])
		}
		// committed origins have already taken their units
		for _, o := range orders {
			if o.Estado.Bucket() == Committed {
				inv, _ = inv.Take(o.MaxiVasos, o.Bolsas)
			}
		}
		before := inv

		for step := 0; step < 10; step++ {
			j := rng.Intn(len(orders))
			p := apply(&orders[j], allStatuses[rng.Intn(len(allStatuses))], &inv, credits)
			assert.False(t, p.Clamped)
		}
		for j := range orders {
			apply(&orders[j], origin[j], &inv, credits)
		}
		assert.Equal(t, before, inv, "iteration %d", i)
	}
}
