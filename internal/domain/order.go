package domain

import "time"

// Order statuses form a linear fulfilment chain; cancelled branches off any
// non-terminal state. delivered and cancelled are terminal.
const (
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusWarehouse      = "warehouse"
	StatusCourierPickup  = "courier_pickup"
	StatusInTransit      = "in_transit"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// statusChain is the forward fulfilment order, used for adjacency checks.
var statusChain = []string{
	StatusPendingPayment,
	StatusPaid,
	StatusWarehouse,
	StatusCourierPickup,
	StatusInTransit,
	StatusDelivered,
}

func ValidStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	for _, c := range statusChain {
		if c == s {
			return true
		}
	}
	return false
}

func TerminalStatus(s string) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// AdjacentTransition reports whether from→to is a single forward step in the
// fulfilment chain, or a cancellation of a non-terminal state.
func AdjacentTransition(from, to string) bool {
	if TerminalStatus(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	for i, c := range statusChain[:len(statusChain)-1] {
		if c == from {
			return statusChain[i+1] == to
		}
	}
	return false
}

type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Status          string        `json:"status"`
	PaymentStatus   string        `json:"paymentStatus"`
	Items           []OrderItem   `json:"items"`
	Total           float64       `json:"total"`
	DeliveryAddress Address       `json:"deliveryAddress"` // snapshot, not a live reference
	PaymentInfo     PaymentInfo   `json:"paymentInfo"`
	StatusHistory   []StatusEntry `json:"statusHistory"`
	Comments        []Comment     `json:"comments"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// OrderItem.Price is the price at order time and never changes afterwards.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// PaymentInfo is the sanitized payment snapshot stored on an order.
type PaymentInfo struct {
	Type        string `json:"type,omitempty"`
	Last4       string `json:"last4,omitempty"`
	PayPalEmail string `json:"paypalEmail,omitempty"`
}

type StatusEntry struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Actor      string    `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
}

type Comment struct {
	Text      string    `json:"text"`
	Actor     string    `json:"actor"`
	IsSystem  bool      `json:"isSystem"`
	Timestamp time.Time `json:"timestamp"`
}
