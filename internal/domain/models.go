package domain

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          float64         `json:"price"`
	CategoryID     string          `json:"categoryId"`
	Stock          int             `json:"stock"`
	ImageIDs       []string        `json:"imageIds"`
	Specifications []Specification `json:"specifications,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Cart is keyed by the owning user id: one cart per user.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Label      string    `json:"label,omitempty"`
	Recipient  string    `json:"recipient"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	PostalCode string    `json:"postalCode"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const (
	PaymentTypeCard   = "card"
	PaymentTypePayPal = "paypal"
)

type PaymentMethod struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"` // card | paypal
	Last4       string    `json:"last4,omitempty"`
	Holder      string    `json:"holder,omitempty"`
	Expiry      string    `json:"expiry,omitempty"`
	PayPalEmail string    `json:"paypalEmail,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type StoredFile struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Mimetype   string    `json:"mimetype"`
	Size       int64     `json:"size"`
	Data       []byte    `json:"data,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
}
