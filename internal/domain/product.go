package domain

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Color       []string  `json:"color"`
	Size        []string  `json:"size"`
	Images      []string  `json:"images"`
	IsFeatured  bool      `json:"isFeatured"`
	IsTop       bool      `json:"isTop"`
	IsNew       bool      `json:"isNew"`
	CategoryID  string    `json:"categoryId"`
	Inventory   int       `json:"inventory"`
	Category    *Category `json:"category,omitempty"`
}

type ProductFilters struct {
	Category   string `json:"category,omitempty"`
	MinPrice   float64 `json:"minPrice,omitempty"`
	MaxPrice   float64 `json:"maxPrice,omitempty"`
	Color      string `json:"color,omitempty"`
	Size       string `json:"size,omitempty"`
	IsFeatured *bool  `json:"isFeatured,omitempty"`
	IsTop      *bool  `json:"isTop,omitempty"`
	IsNew      *bool  `json:"isNew,omitempty"`
	SortBy     string `json:"sortBy,omitempty"`
	SortOrder  string `json:"sortOrder,omitempty"` // asc | desc
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}
