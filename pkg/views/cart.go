package views

import (
	"context"

	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// CartLine is one rendered cart line.
type CartLine struct {
	ID        int64
	ProductID int64
	Name      string
	Image     string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

// Cart renders the shopping cart.
type Cart struct {
	Page
	Lines []CartLine
	// ItemCount is the number of units across all lines.
	ItemCount int
	Total     string
}

func NewCart(state cache.State[models.Cart]) Cart {
	view := Cart{
		Page: resolve(state, func(c models.Cart) bool { return len(c.Items) == 0 }, messages{
			loading: "Loading...",
			failed:  "An error occurred while fetching the cart.",
			empty:   "Your cart is empty",
		}),
	}
	if !state.HasData {
		return view
	}
	for _, item := range state.Data.Items {
		line := CartLine{
			ID:        item.ID,
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Image:     item.Product.Image,
			Quantity:  item.Quantity,
			Subtotal:  Money(item.TotalPrice),
		}
		if !item.Product.Price.IsZero() {
			line.UnitPrice = Money(item.Product.Price)
		}
		view.Lines = append(view.Lines, line)
		view.ItemCount += item.Quantity
	}
	view.Total = Money(state.Data.TotalCartPrice)
	return view
}

// Wishlist renders the saved products.
type Wishlist struct {
	Page
	Items []ProductCard
}

func NewWishlist(state cache.State[[]models.WishlistItem]) Wishlist {
	view := Wishlist{
		Page: resolve(state, emptySlice[models.WishlistItem], messages{
			loading: "Loading wishlist...",
			failed:  "Failed to load wishlist.",
			empty:   "Your wishlist is empty",
		}),
	}
	for _, item := range state.Data {
		view.Items = append(view.Items, ProductCard{
			ID:    item.Product.ID,
			Name:  item.Product.Name,
			Price: Money(item.Product.Price),
			Image: item.Product.Image,
		})
	}
	return view
}

// InWishlist reports whether productID is among items.
func InWishlist(items []models.WishlistItem, productID int64) bool {
	for _, item := range items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// CartController handles cart interactions.
type CartController struct {
	controller
}

func NewCartController(sf *api.Storefront) *CartController {
	return &CartController{controller: newController(sf, "cart-controller")}
}

// Add puts a product into the cart. A quantity above one sets the line to
// that quantity.
func (c *CartController) Add(ctx context.Context, productID int64, quantity int) Result {
	if productID <= 0 {
		return c.reject("add", invalid("product", "Please select a product."))
	}
	if quantity < 1 {
		return c.reject("add", invalid("quantity", "Quantity must be at least 1."))
	}
	req := models.AddToCartRequest{ProductID: productID}
	if quantity > 1 {
		req.SetQuantity = &quantity
	}
	_, err := c.sf.AddToCart(ctx, req)
	return c.outcome("add", err, "Added to cart", "Failed to add product to cart.")
}

// UpdateQuantity changes a line's quantity. A quantity of zero or less
// removes the line.
func (c *CartController) UpdateQuantity(ctx context.Context, itemID int64, quantity int) Result {
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}
	_, err := c.sf.UpdateCartItem(ctx, itemID, quantity)
	return c.outcome("update", err, "Cart updated", "Failed to update cart.")
}

// Remove deletes a line.
func (c *CartController) Remove(ctx context.Context, itemID int64) Result {
	_, err := c.sf.RemoveFromCart(ctx, itemID)
	return c.outcome("remove", err, "Item removed from cart", "Failed to remove item from cart.")
}

// WishlistController handles wishlist interactions.
type WishlistController struct {
	controller
}

func NewWishlistController(sf *api.Storefront) *WishlistController {
	return &WishlistController{controller: newController(sf, "wishlist-controller")}
}

// Toggle adds the product when saved is false and removes it otherwise.
func (c *WishlistController) Toggle(ctx context.Context, productID int64, saved bool) Result {
	if saved {
		_, err := c.sf.RemoveFromWishlist(ctx, productID)
		return c.outcome("remove", err, "Removed from wishlist", "Failed to update wishlist.")
	}
	_, err := c.sf.AddToWishlist(ctx, productID)
	return c.outcome("add", err, "Added to wishlist", "Failed to update wishlist.")
}
