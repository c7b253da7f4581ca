package models

type OrderProduct struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"lineTotal"`
}

type OrderAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

type Transaction struct {
	ID            int    `json:"id"`
	OrderID       int    `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}

type Order struct {
	ID                int            `json:"id"`
	CustomerEmail     string         `json:"customerEmail"`
	CustomerName      string         `json:"customerName"`
	BillingAddress    OrderAddress   `json:"billingAddress"`
	ShippingAddress   OrderAddress   `json:"shippingAddress"`
	SubTotal          float64        `json:"subTotal"`
	ShippingCost      float64        `json:"shippingCost"`
	Discount          float64        `json:"discount"`
	Total             float64        `json:"total"`
	PaymentMethod     string         `json:"paymentMethod"`
	Currency          string         `json:"currency"`
	Status            string         `json:"status"`
	Note              string         `json:"note,omitempty"`
	TrackingReference string         `json:"trackingReference,omitempty"`
	CreatedAt         string         `json:"createdAt"`
	UpdatedAt         string         `json:"updatedAt"`
	Products          []OrderProduct `json:"products"`
	Transaction       *Transaction   `json:"transaction,omitempty"`
}

type OrderStatusUpdate struct {
	Status string `json:"status"`
}
