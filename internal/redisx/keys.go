package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{external_id} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Cache status pedido: order_status:{order_id} -> {"estado": "..."}
	KeyOrderStatus = "order_status:%s"

	// Snapshot del inventario para la vista de clientes
	KeyInventory = "inventory:current"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLInventory   = 15 * time.Second
	TTLDedup       = 48 * time.Hour
)
