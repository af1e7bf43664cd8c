package usecase

// Published on the orders event topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderEventMsg struct {
	Type          string  `json:"type"`
	OrderID       string  `json:"orderId"`
	CustomerID    string  `json:"customerId"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// Consumed from the fulfillment event topic; the fulfillment service reports
// shipment progress and this service applies the matching transition.
type FulfillmentEventMsg struct {
	OrderID string `json:"orderId"`
	Event   string `json:"event"` // SHIPPED | DELIVERED
	Notes   string `json:"notes,omitempty"`
}

// Queued for the notifier service.
type NotificationMsg struct {
	Kind         string `json:"kind"` // order_confirmation | payment_receipt
	OrderID      string `json:"orderId"`
	CustomerID   string `json:"customerId"`
	BookingCode  string `json:"bookingCode"`
	DeliveryCode string `json:"deliveryCode"`
}
