package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Principal is the authenticated storefront user as reported by the server.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is the denormalized snapshot the server embeds in cart and order
// line items. Prices are in the store currency's major unit.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	Discount      int       `json:"discount,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	Images        []string  `json:"images,omitempty"`
	Stock         int       `json:"stock"`
	SKU           string    `json:"sku,omitempty"`
	Category      *Category `json:"category,omitempty"`
}

// CartItem is one cart line. The product snapshot is replaced wholesale on
// every cart fetch, never patched locally.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

type OrderItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	ID          string      `json:"id"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ShippingDetails are collected at checkout and sent with the order request.
type ShippingDetails struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type PaymentDetails struct {
	Method string `json:"method"`
	Notes  string `json:"notes,omitempty"`
}

// CheckoutRequest is the order-creation payload. The server still prices the
// order from its own cart state; these fields only describe fulfilment.
type CheckoutRequest struct {
	Shipping ShippingDetails `json:"shipping"`
	Payment  PaymentDetails  `json:"payment"`
}
