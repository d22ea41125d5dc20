package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/prefetch"
	"github.com/Sternrassler/storefront-client/pkg/views"
)

// errReported means the failure was already written as part of the output.
var errReported = errors.New("reported")

type command struct {
	usage   string
	summary string
	minArgs int
	// maxArgs is -1 for no limit.
	maxArgs int
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"categories":  {"", "list categories", 0, 0, runCategories},
	"category":    {"<slug>", "show a category and its products", 1, 1, runCategory},
	"products":    {"[key=value...]", "list products, e.g. category=dairy page=2", 0, -1, runProducts},
	"product":     {"<id>", "show a product with reviews and related products", 1, 1, runProduct},
	"search":      {"<query>", "search products", 1, -1, runSearch},
	"cart":        {"", "show the cart", 0, 0, runCart},
	"cart-add":    {"<product-id> [quantity]", "add a product to the cart", 1, 2, runCartAdd},
	"cart-set":    {"<item-id> <quantity>", "change a cart line; 0 removes it", 2, 2, runCartSet},
	"cart-remove": {"<item-id>", "remove a cart line", 1, 1, runCartRemove},
	"wishlist":    {"", "show the wishlist", 0, 0, runWishlist},
	"save":        {"<product-id>", "add a product to the wishlist", 1, 1, runSave},
	"unsave":      {"<product-id>", "remove a product from the wishlist", 1, 1, runUnsave},
	"orders":      {"", "list orders", 0, 0, runOrders},
	"order":       {"<id>", "show an order and its timeline", 1, 1, runOrder},
	"checkout":    {"[<address-id> <delivery-time> [promo]]", "show checkout options or place an order", 0, 3, runCheckout},
	"account":     {"", "show the signed-in user", 0, 0, runAccount},
	"addresses":   {"", "list saved addresses", 0, 0, runAddresses},
	"dashboard":   {"", "show order statistics", 0, 0, runDashboard},
	"login":       {"<email> <password>", "sign in", 2, 2, runLogin},
	"logout":      {"", "sign out", 0, 0, runLogout},
	"admin-users": {"", "list users (staff only)", 0, 0, runAdminUsers},
}

// settle subscribes to def, waits for the first settled state and
// releases the subscription.
func settle[A, R any](ctx context.Context, a *app, def api.QueryDef[A, R], arg A) (cache.State[R], error) {
	q, err := api.Subscribe(a.sf, def, arg)
	if err != nil {
		return cache.State[R]{}, err
	}
	defer q.Close()
	return q.Wait(ctx)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func parseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", raw)
	}
	return n, nil
}

// pageResult turns an error page into errReported.
func pageResult(p views.Page) error {
	if p.Status == views.StatusError {
		return errReported
	}
	return nil
}

// actionResult prints the notice of r.
func (a *app) actionResult(r views.Result) error {
	if r.Notice != "" {
		fmt.Fprintln(a.out, r.Notice)
	}
	if !r.OK {
		return errReported
	}
	return nil
}

func runCategories(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Categories.GetCategories, api.None{})
	if err != nil {
		return err
	}
	view := views.NewCategoryList(state)
	renderCategories(a.out, view)
	return pageResult(view.Page)
}

func runCategory(ctx context.Context, a *app, args []string) error {
	state, err := settle(ctx, a, api.Categories.GetCategoryBySlug, args[0])
	if err != nil {
		return err
	}
	view := views.NewCategory(state)
	renderCategory(a.out, view)
	return pageResult(view.Page)
}

func runProducts(ctx context.Context, a *app, args []string) error {
	params := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid filter %q, want key=value", arg)
		}
		params.Add(key, value)
	}
	state, err := settle(ctx, a, api.Products.GetProducts, params)
	if err != nil {
		return err
	}
	view := views.NewProductList(state, "")
	renderProductList(a.out, view)
	return pageResult(view.Page)
}

func runProduct(ctx context.Context, a *app, args []string) error {
	id, err := parseID("product id", args[0])
	if err != nil {
		return err
	}
	// The page needs three queries; warm them together.
	if _, err := a.prefetcher.Warm(ctx, prefetch.ProductPage(a.sf, id)...); err != nil {
		return err
	}

	product, err := settle(ctx, a, api.Products.GetProduct, id)
	if err != nil {
		return err
	}
	related, err := settle(ctx, a, api.Products.GetRelatedProducts, id)
	if err != nil {
		return err
	}
	view := views.NewProductDetail(product, related)
	renderProductDetail(a.out, view)
	return pageResult(view.Page)
}

func runSearch(ctx context.Context, a *app, args []string) error {
	query := strings.Join(args, " ")
	state, err := settle(ctx, a, api.Products.SearchProducts, query)
	if err != nil {
		return err
	}
	view := views.NewProductList(state, query)
	renderProductList(a.out, view)
	return pageResult(view.Page)
}

func runCart(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Cart.GetCart, api.None{})
	if err != nil {
		return err
	}
	view := views.NewCart(state)
	renderCart(a.out, view)
	return pageResult(view.Page)
}

func runCartAdd(ctx context.Context, a *app, args []string) error {
	id, err := parseID("product id", args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = parseQuantity(args[1]); err != nil {
			return err
		}
	}
	return a.actionResult(a.cart.Add(ctx, id, qty))
}

func runCartSet(ctx context.Context, a *app, args []string) error {
	id, err := parseID("item id", args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	return a.actionResult(a.cart.UpdateQuantity(ctx, id, qty))
}

func runCartRemove(ctx context.Context, a *app, args []string) error {
	id, err := parseID("item id", args[0])
	if err != nil {
		return err
	}
	return a.actionResult(a.cart.Remove(ctx, id))
}

func runWishlist(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Wishlist.GetWishlist, api.None{})
	if err != nil {
		return err
	}
	view := views.NewWishlist(state)
	renderWishlist(a.out, view)
	return pageResult(view.Page)
}

func runSave(ctx context.Context, a *app, args []string) error {
	id, err := parseID("product id", args[0])
	if err != nil {
		return err
	}
	return a.actionResult(a.wishlist.Toggle(ctx, id, false))
}

func runUnsave(ctx context.Context, a *app, args []string) error {
	id, err := parseID("product id", args[0])
	if err != nil {
		return err
	}
	return a.actionResult(a.wishlist.Toggle(ctx, id, true))
}

func runOrders(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Orders.GetOrders, api.None{})
	if err != nil {
		return err
	}
	view := views.NewOrderList(state)
	renderOrders(a.out, view)
	return pageResult(view.Page)
}

func runOrder(ctx context.Context, a *app, args []string) error {
	state, err := settle(ctx, a, api.Orders.GetOrder, args[0])
	if err != nil {
		return err
	}
	view := views.NewOrderDetail(state)
	renderOrderDetail(a.out, view)
	return pageResult(view.Page)
}

func runCheckout(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return showCheckout(ctx, a)
	}

	id, err := parseID("address id", args[0])
	if err != nil {
		return err
	}
	form := views.CheckoutForm{AddressID: id}
	if len(args) > 1 {
		form.DeliveryTime = args[1]
	}
	if len(args) > 2 {
		form.PromoCode = args[2]
	}

	r := a.checkout.Submit(ctx, form)
	if err := a.actionResult(r); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Confirmation: %s\n", r.Redirect)
	return nil
}

func showCheckout(ctx context.Context, a *app) error {
	if _, err := a.prefetcher.Warm(ctx, prefetch.Checkout(a.sf)...); err != nil {
		return err
	}
	cart, err := settle(ctx, a, api.Cart.GetCart, api.None{})
	if err != nil {
		return err
	}
	slots, err := settle(ctx, a, api.Orders.GetDeliveryTimes, api.None{})
	if err != nil {
		return err
	}
	addresses, err := settle(ctx, a, api.Addresses.GetAddresses, api.None{})
	if err != nil {
		return err
	}
	view := views.NewCheckout(cart, slots, addresses)
	renderCheckout(a.out, view)
	return pageResult(view.Page)
}

func runAccount(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Auth.GetAccount, api.None{})
	if err != nil {
		return err
	}
	view := views.NewAccount(state)
	renderAccount(a.out, view)
	return pageResult(view.Page)
}

func runAddresses(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Addresses.GetAddresses, api.None{})
	if err != nil {
		return err
	}
	view := views.NewAddresses(state)
	renderAddresses(a.out, view)
	return pageResult(view.Page)
}

func runDashboard(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Dashboard.GetDashboard, api.None{})
	if err != nil {
		return err
	}
	view := views.NewDashboard(state)
	renderDashboard(a.out, view)
	return pageResult(view.Page)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	return a.actionResult(a.auth.Login(ctx, args[0], args[1]))
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	return a.actionResult(a.auth.Logout(ctx))
}

func runAdminUsers(ctx context.Context, a *app, _ []string) error {
	state, err := settle(ctx, a, api.Admin.GetUsers, api.None{})
	if err != nil {
		return err
	}
	view := views.NewAdminUsers(state)
	renderAdminUsers(a.out, view)
	return pageResult(view.Page)
}
