package api

import (
	"net/http"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// Cart is the cart group. Every write invalidates the whole Cart tag so
// any cart query refetches.
var Cart = struct {
	GetCart        QueryDef[None, models.Cart]
	AddToCart      MutationDef[models.AddToCartRequest, models.Message]
	UpdateCartItem MutationDef[models.UpdateCartItemRequest, models.Message]
	RemoveFromCart MutationDef[int64, models.Message]
}{
	GetCart: QueryDef[None, models.Cart]{
		Name:     "getCart",
		Path:     "/cart/",
		Provides: tags[None](cache.TypeTag(TagCart)),
	},
	AddToCart: MutationDef[models.AddToCartRequest, models.Message]{
		Name:        "addToCart",
		Method:      http.MethodPost,
		Path:        "/cart/add/",
		Bind:        withBody[models.AddToCartRequest],
		Invalidates: tags[models.AddToCartRequest](cache.TypeTag(TagCart)),
	},
	UpdateCartItem: MutationDef[models.UpdateCartItemRequest, models.Message]{
		Name:   "updateCartItem",
		Method: http.MethodPatch,
		Path:   "/cart/update/{id}/",
		Bind: func(r models.UpdateCartItemRequest) Call {
			call := byID(r.CartItemID)
			call.Body = r
			return call
		},
		Invalidates: tags[models.UpdateCartItemRequest](cache.TypeTag(TagCart)),
	},
	RemoveFromCart: MutationDef[int64, models.Message]{
		Name:        "removeFromCart",
		Method:      http.MethodDelete,
		Path:        "/cart/remove/{id}/",
		Bind:        byID,
		Invalidates: tags[int64](cache.TypeTag(TagCart)),
	},
}

// Wishlist is the wishlist group.
var Wishlist = struct {
	GetWishlist        QueryDef[None, []models.WishlistItem]
	AddToWishlist      MutationDef[int64, models.Message]
	RemoveFromWishlist MutationDef[int64, models.Message]
}{
	GetWishlist: QueryDef[None, []models.WishlistItem]{
		Name:     "getWishlist",
		Path:     "/wishlist/",
		Provides: tags[None](cache.TypeTag(TagWishlist)),
	},
	AddToWishlist: MutationDef[int64, models.Message]{
		Name:        "addToWishlist",
		Method:      http.MethodPost,
		Path:        "/wishlist/add/",
		Bind:        wishlistBody,
		Invalidates: tags[int64](cache.TypeTag(TagWishlist)),
	},
	RemoveFromWishlist: MutationDef[int64, models.Message]{
		Name:        "removeFromWishlist",
		Method:      http.MethodDelete,
		Path:        "/wishlist/remove/",
		Bind:        wishlistBody,
		Invalidates: tags[int64](cache.TypeTag(TagWishlist)),
	},
}

func wishlistBody(productID int64) Call {
	return Call{Body: models.WishlistRequest{ProductID: productID}}
}
