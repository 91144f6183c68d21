package domain

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"` // processing | shipped | delivered | cancelled
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
	// ShippingAddress is stored upstream in several historical shapes
	// (free text, JSON object, delimited string). Display goes through
	// format.ShippingAddress.
	ShippingAddress string `json:"shippingAddress,omitempty"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type PlaceOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

type OrderStatusEvent struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type OrderSearchFilters struct {
	Status    string `json:"status,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type OrderSearchResult struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}
