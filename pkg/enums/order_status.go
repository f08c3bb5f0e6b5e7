package enums

import "slices"

// OrderStatus tracks an order from placement to delivery. Any status may move
// to any other except that CANCELLED is final: cancelling returns the stock,
// so leaving CANCELLED would need a second deduction.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusDispatched OrderStatus = "DISPATCHED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusDispatched,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (o OrderStatus) String() string { return string(o) }
func (o OrderStatus) IsValid() bool  { return slices.Contains(orderStatuses, o) }

// IsTerminal reports whether no transition out of the status is allowed.
func (o OrderStatus) IsTerminal() bool { return o == OrderStatusCancelled }

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parse("order status", orderStatuses, value)
}
