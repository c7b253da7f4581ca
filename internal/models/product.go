package models

import (
	"net/url"
	"strconv"
)

type ProductTranslation struct {
	ID               int    `json:"id"`
	ProductID        int    `json:"product_id"`
	Locale           string `json:"locale"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description,omitempty"`
}

type Category struct {
	ID           int    `json:"id"`
	ParentID     *int   `json:"parent_id,omitempty"`
	Slug         string `json:"slug"`
	Name         string `json:"name,omitempty"`
	IsSearchable bool   `json:"is_searchable"`
	IsActive     bool   `json:"is_active"`
}

type ProductCategory struct {
	ProductID  int      `json:"product_id"`
	CategoryID int      `json:"category_id"`
	Categories Category `json:"categories"`
}

type Product struct {
	ID                  int                  `json:"id"`
	Slug                string               `json:"slug"`
	SKU                 string               `json:"sku,omitempty"`
	Price               *float64             `json:"price,omitempty"`
	SpecialPrice        *float64             `json:"special_price,omitempty"`
	SellingPrice        *float64             `json:"selling_price,omitempty"`
	ManageStock         bool                 `json:"manage_stock"`
	Qty                 *int                 `json:"qty,omitempty"`
	InStock             bool                 `json:"in_stock"`
	Viewed              int                  `json:"viewed"`
	IsActive            bool                 `json:"is_active"`
	IsVirtual           bool                 `json:"is_virtual"`
	CreatedAt           string               `json:"created_at,omitempty"`
	UpdatedAt           string               `json:"updated_at,omitempty"`
	ProductTranslations []ProductTranslation `json:"product_translations"`
	ProductCategories   []ProductCategory    `json:"product_categories"`
}

// Name — имя из первой подходящей локали (или первой доступной).
func (p Product) Name(locale string) string {
	for _, tr := range p.ProductTranslations {
		if tr.Locale == locale {
			return tr.Name
		}
	}
	if len(p.ProductTranslations) > 0 {
		return p.ProductTranslations[0].Name
	}

	return p.Slug
}

type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ProductPage struct {
	Data []Product `json:"data"`
	Meta PageMeta  `json:"meta"`
}

// SearchParams — параметры /products/search. Нулевые значения не отправляются.
type SearchParams struct {
	Query     string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Values — query-параметры без пустых значений.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}

	set("q", p.Query)
	set("category", p.Category)
	if p.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	set("sortBy", p.SortBy)
	set("sortOrder", p.SortOrder)

	return v
}

type CartItem struct {
	ProductID        int     `json:"productId"`
	Quantity         int     `json:"quantity"`
	ProductVariantID *int    `json:"productVariantId,omitempty"`
	Product          Product `json:"product"`
	Subtotal         float64 `json:"subtotal"`
}

type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}

// EmptyCart — корзина после очистки или оформления заказа.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}, Total: 0, Count: 0}
}

type AddToCartRequest struct {
	ProductID        int  `json:"productId"`
	Quantity         int  `json:"quantity"`
	ProductVariantID *int `json:"productVariantId,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity         *int `json:"quantity,omitempty"`
	ProductVariantID *int `json:"productVariantId,omitempty"`
}

type CheckoutRequest struct {
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	BillingAddress  string `json:"billingAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
	SameAsShipping  bool   `json:"sameAsShipping,omitempty"`
}

type CheckoutResponse struct {
	Message string  `json:"message"`
	OrderID int     `json:"orderId"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

type WishlistItem struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Slug      string  `json:"slug"`
	Image     string  `json:"image,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type Wishlist struct {
	Items []WishlistItem `json:"items"`
	Count int            `json:"count"`
}
