package models

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// CanTransitionTo reports whether an order in the current status may move to
// target. Completed and cancelled are terminal. The check is re-derived from
// the persisted status on every call, never cached.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	default:
		return false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}

	return false
}
