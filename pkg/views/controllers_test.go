package views

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/storefront-client/internal/testutil"
	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/models"
	"github.com/Sternrassler/storefront-client/pkg/session"
)

func newTestStorefront(t *testing.T) (*api.Storefront, *testutil.MockStorefront) {
	t.Helper()

	mock := testutil.NewMockStorefront()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig(session.Anonymous())
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)
	c.SetLogger(zerolog.Nop())

	store := cache.NewStore(cache.WithLogger(zerolog.Nop()))
	t.Cleanup(store.Close)

	sf := api.New(c, store)
	sf.SetLogger(zerolog.Nop())
	return sf, mock
}

func signIn(t *testing.T, sf *api.Storefront, email string) {
	t.Helper()
	auth := NewAuthController(sf)
	auth.SetLogger(zerolog.Nop())
	r := auth.Login(testCtx(t), email, testutil.UserPassword)
	require.True(t, r.OK, "login: %v", r.Err)
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCheckoutController_RejectsMissingAddressWithoutRequest(t *testing.T) {
	sf, mock := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{1: 2})
	before := mock.RequestCount()

	ctrl := NewCheckoutController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.Submit(testCtx(t), CheckoutForm{DeliveryTime: "9:00 AM - 11:00 AM"})
	assert.False(t, r.OK)
	assert.True(t, IsValidation(r.Err))
	assert.Equal(t, "Please select a delivery address.", r.Notice)
	assert.Empty(t, r.Redirect)

	r = ctrl.Submit(testCtx(t), CheckoutForm{AddressID: 1, DeliveryTime: "  "})
	assert.True(t, IsValidation(r.Err))
	assert.Equal(t, "Please select a delivery time.", r.Notice)

	assert.Equal(t, before, mock.RequestCount(), "invalid checkout must not reach the network")
	assert.Zero(t, mock.Count(http.MethodPost, "/orders/checkout/"))
}

func TestCheckoutController_Submit(t *testing.T) {
	sf, mock := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{1: 2})
	addr := mock.AddAddress(models.Address{Name: "Home", Address: "1 Main St"})

	ctrl := NewCheckoutController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.Submit(testCtx(t), CheckoutForm{AddressID: addr.ID, DeliveryTime: "9:00 AM - 11:00 AM", PromoCode: " SAVE20 "})
	require.True(t, r.OK, "checkout: %v", r.Err)
	assert.Equal(t, "/checkout/confirmation?order_id=ORD-0001", r.Redirect)
	assert.Equal(t, "Order placed successfully", r.Notice)

	// Submitting again fails server-side: the cart is now empty.
	r = ctrl.Submit(testCtx(t), CheckoutForm{AddressID: addr.ID, DeliveryTime: "9:00 AM - 11:00 AM"})
	assert.False(t, r.OK)
	assert.False(t, IsValidation(r.Err))
	assert.Equal(t, http.StatusBadRequest, client.StatusOf(r.Err))
	assert.Equal(t, "An error occurred during checkout. Please try again.", r.Notice)
}

func TestCartController_ZeroQuantityRemoves(t *testing.T) {
	sf, mock := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{1: 2})

	cart, err := api.Fetch(testCtx(t), sf, api.Cart.GetCart, api.None{})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	ctrl := NewCartController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.UpdateQuantity(testCtx(t), cart.Items[0].ID, 0)
	require.True(t, r.OK, "update: %v", r.Err)
	assert.Equal(t, "Item removed from cart", r.Notice)
	assert.Equal(t, 1, mock.Count(http.MethodDelete, "/cart/remove/1/"))
	assert.Zero(t, mock.Count(http.MethodPatch, "/cart/update/1/"))

	cart, err = api.Fetch(testCtx(t), sf, api.Cart.GetCart, api.None{})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartController_AddAndUpdate(t *testing.T) {
	sf, mock := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)

	ctrl := NewCartController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.Add(testCtx(t), 3, 0)
	assert.True(t, IsValidation(r.Err))
	assert.Zero(t, mock.Count(http.MethodPost, "/cart/add/"))

	r = ctrl.Add(testCtx(t), 3, 3)
	require.True(t, r.OK, "add: %v", r.Err)

	cart, err := api.Fetch(testCtx(t), sf, api.Cart.GetCart, api.None{})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	r = ctrl.UpdateQuantity(testCtx(t), cart.Items[0].ID, 5)
	require.True(t, r.OK, "update: %v", r.Err)
	assert.Equal(t, "Cart updated", r.Notice)

	r = ctrl.Remove(testCtx(t), 999)
	assert.False(t, r.OK)
	assert.Equal(t, http.StatusNotFound, client.StatusOf(r.Err))
	assert.Equal(t, "Failed to remove item from cart.", r.Notice)
}

func TestAccountController_PasswordConfirmation(t *testing.T) {
	sf, mock := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)

	ctrl := NewAccountController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.ChangePassword(testCtx(t), PasswordForm{Current: testutil.UserPassword, New: "new-password", Confirm: "other-password"})
	assert.True(t, IsValidation(r.Err))
	assert.Equal(t, "Passwords do not match.", r.Notice)

	r = ctrl.ChangePassword(testCtx(t), PasswordForm{Current: testutil.UserPassword, New: "short", Confirm: "short"})
	assert.True(t, IsValidation(r.Err))
	assert.Zero(t, mock.Count(http.MethodPost, "/account/change-password/"))

	r = ctrl.ChangePassword(testCtx(t), PasswordForm{Current: "wrong", New: "new-password", Confirm: "new-password"})
	assert.False(t, r.OK)
	assert.Equal(t, http.StatusBadRequest, client.StatusOf(r.Err))

	r = ctrl.ChangePassword(testCtx(t), PasswordForm{Current: testutil.UserPassword, New: "new-password", Confirm: "new-password"})
	assert.True(t, r.OK, "change password: %v", r.Err)
}

func TestAccountController_ProfileAndAddresses(t *testing.T) {
	sf, _ := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)

	ctrl := NewAccountController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.UpdateProfile(testCtx(t), models.UserUpdate{Email: "not-an-email"})
	assert.True(t, IsValidation(r.Err))

	r = ctrl.UpdateProfile(testCtx(t), models.UserUpdate{Name: "Alice Cooper"})
	require.True(t, r.OK, "update profile: %v", r.Err)

	account, err := api.Fetch(testCtx(t), sf, api.Auth.GetAccount, api.None{})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", account.Name)

	r = ctrl.SaveAddress(testCtx(t), models.Address{Name: "Home"})
	assert.True(t, IsValidation(r.Err))

	r = ctrl.SaveAddress(testCtx(t), models.Address{Name: "Home", Address: "1 Main St", City: "Springfield"})
	require.True(t, r.OK, "save address: %v", r.Err)

	addresses, err := api.Fetch(testCtx(t), sf, api.Addresses.GetAddresses, api.None{})
	require.NoError(t, err)
	require.Len(t, addresses, 1)

	r = ctrl.DeleteAddress(testCtx(t), addresses[0].ID)
	assert.True(t, r.OK, "delete address: %v", r.Err)
}

func TestAuthController(t *testing.T) {
	sf, mock := newTestStorefront(t)

	ctrl := NewAuthController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.Login(testCtx(t), "", "")
	assert.True(t, IsValidation(r.Err))

	r = ctrl.Login(testCtx(t), testutil.UserEmail, "wrong")
	assert.False(t, r.OK)
	assert.Equal(t, "Invalid email or password.", r.Notice)
	assert.False(t, sf.Session().Authenticated())

	r = ctrl.Signup(testCtx(t), SignupForm{Name: "Bob", Email: "bob@example.com", Password: "password1", Confirm: "password2"})
	assert.Equal(t, "Passwords do not match.", r.Notice)
	assert.Zero(t, mock.Count(http.MethodPost, "/signup/"))

	r = ctrl.Signup(testCtx(t), SignupForm{Name: "Bob", Email: "bob@example.com", Password: "password1", Confirm: "password1"})
	require.True(t, r.OK, "signup: %v", r.Err)

	r = ctrl.Login(testCtx(t), "bob@example.com", "password1")
	require.True(t, r.OK, "login: %v", r.Err)
	assert.True(t, sf.Session().Authenticated())

	r = ctrl.Logout(testCtx(t))
	assert.True(t, r.OK, "logout: %v", r.Err)
	assert.False(t, sf.Session().Authenticated())

	r = ctrl.ResetPassword(testCtx(t), ResetForm{Token: "abc", Password: "password1", Confirm: "password9"})
	assert.True(t, IsValidation(r.Err))
}

func TestWishlistController_Toggle(t *testing.T) {
	sf, _ := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)

	ctrl := NewWishlistController(sf)
	ctrl.SetLogger(zerolog.Nop())

	items, err := api.Fetch(testCtx(t), sf, api.Wishlist.GetWishlist, api.None{})
	require.NoError(t, err)
	require.False(t, InWishlist(items, 2))

	r := ctrl.Toggle(testCtx(t), 2, InWishlist(items, 2))
	require.True(t, r.OK, "toggle: %v", r.Err)
	assert.Equal(t, "Added to wishlist", r.Notice)

	items, err = api.Fetch(testCtx(t), sf, api.Wishlist.GetWishlist, api.None{})
	require.NoError(t, err)
	require.True(t, InWishlist(items, 2))

	r = ctrl.Toggle(testCtx(t), 2, InWishlist(items, 2))
	require.True(t, r.OK, "toggle: %v", r.Err)
	assert.Equal(t, "Removed from wishlist", r.Notice)
}

func TestAdminController(t *testing.T) {
	sf, mock := newTestStorefront(t)
	signIn(t, sf, testutil.UserEmail)

	ctrl := NewAdminController(sf)
	ctrl.SetLogger(zerolog.Nop())

	r := ctrl.UpdateUser(testCtx(t), models.UserUpdate{Name: "x"})
	assert.True(t, IsValidation(r.Err))

	r = ctrl.UpdateOrderStatus(testCtx(t), "ORD-0001", models.OrderStatusShipped)
	assert.False(t, r.OK)
	assert.Equal(t, http.StatusForbidden, client.StatusOf(r.Err))

	signIn(t, sf, testutil.AdminEmail)

	users, err := api.Fetch(testCtx(t), sf, api.Admin.GetUsers, api.None{})
	require.NoError(t, err)
	require.NotEmpty(t, users)

	staff := true
	r = ctrl.UpdateUser(testCtx(t), models.UserUpdate{ID: users[0].ID, IsStaff: &staff})
	require.True(t, r.OK, "update user: %v", r.Err)

	r = ctrl.DeleteUser(testCtx(t), 0)
	assert.True(t, IsValidation(r.Err))
	assert.Zero(t, mock.Count(http.MethodDelete, "/admin/users/0/"))

	r = ctrl.UpdateOrderStatus(testCtx(t), "ORD-9999", models.OrderStatusShipped)
	assert.Equal(t, http.StatusNotFound, client.StatusOf(r.Err))
}
