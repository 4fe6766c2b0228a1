package redisx

import "time"

const (
	// Checkout idempotency shortcut: idem:order:place:{external_ref} -> order_id.
	// The orders.external_ref unique column is the source of truth; this
	// only saves a round trip on client retries.
	KeyIdemOrderPlace = "idem:order:place:%s"

	// Order status cache: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%d"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
