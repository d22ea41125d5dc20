package models

import "github.com/shopspring/decimal"

// CartItem is one line of the cart. TotalPrice is computed by the server.
type CartItem struct {
	ID         int64           `json:"id"`
	Product    ProductSummary  `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Cart is the current user's cart.
type Cart struct {
	Items          []CartItem      `json:"items"`
	TotalCartPrice decimal.Decimal `json:"total_cart_price"`
}

// Item returns the line with the given id.
func (c Cart) Item(id int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// AddToCartRequest adds a product, or sets its quantity when SetQuantity
// is non-nil.
type AddToCartRequest struct {
	ProductID   int64 `json:"product_id"`
	SetQuantity *int  `json:"set_quantity,omitempty"`
}

// UpdateCartItemRequest changes the quantity of an existing line.
type UpdateCartItemRequest struct {
	CartItemID int64 `json:"-"`
	Quantity   int   `json:"quantity"`
}

// WishlistItem is one saved product.
type WishlistItem struct {
	ID      int64          `json:"id"`
	Product ProductSummary `json:"product"`
}

// WishlistRequest is the body of wishlist add/remove calls.
type WishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

// Message is the generic `{"message": ...}` acknowledgement.
type Message struct {
	Message string `json:"message"`
}
