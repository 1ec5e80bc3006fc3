package domain

// OrderStatus is the lifecycle state of an order. The intended happy path is
// PENDING -> CONFIRMED -> PREPARING -> READY -> COMPLETED, with CANCELLED
// reachable from any non-terminal state. Transitions are not enforced: any
// known status may be written over any other, matching the behavior the
// frontend depends on.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = map[OrderStatus]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusPreparing: true,
	StatusReady:     true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}
