package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/storefront-client/internal/testutil"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/models"
	"github.com/Sternrassler/storefront-client/pkg/session"
)

func newTestStorefront(t *testing.T) (*Storefront, *testutil.MockStorefront) {
	t.Helper()

	mock := testutil.NewMockStorefront()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig(session.Anonymous())
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)
	c.SetLogger(zerolog.Nop())

	store := cache.NewStore(cache.WithLogger(zerolog.Nop()), cache.WithKeepUnused(-1))
	t.Cleanup(store.Close)

	sf := New(c, store)
	sf.SetLogger(zerolog.Nop())
	return sf, mock
}

func login(t *testing.T, sf *Storefront, email string) {
	t.Helper()
	_, err := sf.Login(testCtx(t), models.Credentials{Email: email, Password: testutil.UserPassword})
	require.NoError(t, err)
	require.True(t, sf.Session().Authenticated())
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func settled[R any](t *testing.T, q *Query[R]) cache.State[R] {
	t.Helper()
	state, err := q.Wait(testCtx(t))
	require.NoError(t, err)
	return state
}

func TestStorefront_ConcurrentQueriesShareOneRequest(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{1: 2})

	release := mock.Hold("/cart/")

	var wg sync.WaitGroup
	queries := make([]*Query[models.Cart], 2)
	for i := range queries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := sf.GetCart()
			assert.NoError(t, err)
			queries[i] = q
		}(i)
	}
	wg.Wait()
	release()

	first := settled(t, queries[0])
	second := settled(t, queries[1])

	assert.Equal(t, 1, mock.Count(http.MethodGet, "/cart/"))
	assert.Equal(t, first.Data, second.Data)
	require.Len(t, first.Data.Items, 1)
	assert.Equal(t, "Milk", first.Data.Items[0].Product.Name)
}

func TestStorefront_MutationRefetchesSubscribedQueries(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)

	cart, err := sf.GetCart()
	require.NoError(t, err)
	defer cart.Close()
	assert.Empty(t, settled(t, cart).Data.Items)

	products, err := sf.GetProducts(nil)
	require.NoError(t, err)
	defer products.Close()
	settled(t, products)

	_, err = sf.AddToCart(testCtx(t), models.AddToCartRequest{ProductID: 1})
	require.NoError(t, err)

	state := settled(t, cart)
	require.Len(t, state.Data.Items, 1)
	assert.Equal(t, "Milk", state.Data.Items[0].Product.Name)

	assert.Equal(t, 2, mock.Count(http.MethodGet, "/cart/"))
	assert.Equal(t, 1, mock.Count(http.MethodGet, "/products/"), "queries with other tags are not refetched")
}

func TestStorefront_CallerParamChangesDoNotReachQuery(t *testing.T) {
	sf, mock := newTestStorefront(t)

	params := url.Values{"category": {"dairy"}}
	products, err := sf.GetProducts(params)
	require.NoError(t, err)
	defer products.Close()
	settled(t, products)

	params.Set("category", "bakery")
	require.NoError(t, products.Refetch())
	state := settled(t, products)

	assert.Equal(t, "getProducts:category=dairy", products.Key().String())
	assert.Equal(t, 2, mock.Count(http.MethodGet, "/products/"))
	names := make([]string, 0, len(state.Data))
	for _, p := range state.Data {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Milk", "Yogurt"}, names, "refetch keeps the original filter")

	bakery, err := sf.GetProducts(url.Values{"category": {"bakery"}})
	require.NoError(t, err)
	defer bakery.Close()
	require.Len(t, settled(t, bakery).Data, 1)
	assert.Equal(t, 3, mock.Count(http.MethodGet, "/products/"), "bakery has its own entry")
}

func TestStorefront_SeparatorValuesGetDistinctEntries(t *testing.T) {
	sf, mock := newTestStorefront(t)

	split, err := sf.GetProducts(url.Values{"q": {"a", "b"}})
	require.NoError(t, err)
	defer split.Close()
	settled(t, split)

	joined, err := sf.GetProducts(url.Values{"q": {"a,b"}})
	require.NoError(t, err)
	defer joined.Close()
	settled(t, joined)

	assert.NotEqual(t, split.Key().String(), joined.Key().String())
	assert.Equal(t, 2, mock.Count(http.MethodGet, "/products/"))
}

func TestStorefront_FailedMutationKeepsCache(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)

	cart, err := sf.GetCart()
	require.NoError(t, err)
	defer cart.Close()
	settled(t, cart)

	_, err = sf.RemoveFromCart(testCtx(t), 999)
	require.Error(t, err)
	apiErr, ok := client.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Cart item not found", apiErr.Message)

	assert.False(t, cart.State().Fetching)
	assert.Equal(t, 1, mock.Count(http.MethodGet, "/cart/"))
}

func TestStorefront_ZeroQuantityUpdateMatchesRemove(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{1: 2, 3: 1})

	cart, err := sf.GetCart()
	require.NoError(t, err)
	defer cart.Close()
	state := settled(t, cart)
	require.Len(t, state.Data.Items, 2)
	milk, bread := state.Data.Items[0], state.Data.Items[1]

	_, err = sf.UpdateCartItem(testCtx(t), milk.ID, 0)
	require.NoError(t, err)
	state = settled(t, cart)
	_, found := state.Data.Item(milk.ID)
	assert.False(t, found, "zero quantity removes the line")

	_, err = sf.RemoveFromCart(testCtx(t), bread.ID)
	require.NoError(t, err)
	state = settled(t, cart)
	_, found = state.Data.Item(bread.ID)
	assert.False(t, found)

	assert.Equal(t, 3, mock.Count(http.MethodGet, "/cart/"), "both writes invalidate the cart")
}

func TestStorefront_ItemTagInvalidation(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.AdminEmail)

	milk, err := sf.GetProduct(1)
	require.NoError(t, err)
	defer milk.Close()
	bread, err := sf.GetProduct(3)
	require.NoError(t, err)
	defer bread.Close()
	settled(t, milk)
	settled(t, bread)

	price := decimal.RequireFromString("3.99")
	_, err = sf.UpdateProduct(testCtx(t), 1, models.ProductInput{Price: &price})
	require.NoError(t, err)

	state := settled(t, milk)
	assert.True(t, state.Data.Price.Equal(price))
	assert.Equal(t, 2, mock.Count(http.MethodGet, "/products/1/"))
	assert.Equal(t, 1, mock.Count(http.MethodGet, "/products/3/"))
}

func TestStorefront_LogoutClearsToken(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)

	account, err := sf.GetAccount()
	require.NoError(t, err)
	defer account.Close()
	state := settled(t, account)
	assert.Equal(t, "Alice", state.Data.Name)
	assert.NotEmpty(t, mock.LastHeader("/account/").Get("Authorization"))

	_, err = sf.Logout(testCtx(t))
	require.NoError(t, err)
	assert.False(t, sf.Session().Authenticated())

	// The account query refetched anonymously.
	state = settled(t, account)
	assert.True(t, state.IsError())
	assert.Empty(t, mock.LastHeader("/account/").Get("Authorization"))

	_, err = Fetch(testCtx(t), sf, Products.GetProducts, nil)
	require.NoError(t, err)
	assert.Empty(t, mock.LastHeader("/products/").Get("Authorization"))
}

func TestStorefront_LogoutClearsTokenOnFailure(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)
	mock.SetResponse("/logout/", testutil.MockResponse{StatusCode: http.StatusInternalServerError})

	_, err := sf.Logout(testCtx(t))
	require.Error(t, err)
	assert.False(t, sf.Session().Authenticated())
}

func TestStorefront_FailedLoginKeepsSessionAnonymous(t *testing.T) {
	sf, _ := newTestStorefront(t)

	_, err := sf.Login(testCtx(t), models.Credentials{Email: testutil.UserEmail, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))
	assert.False(t, sf.Session().Authenticated())
}

func TestStorefront_RefreshToken(t *testing.T) {
	sf, _ := newTestStorefront(t)

	_, err := sf.RefreshToken(testCtx(t))
	assert.ErrorIs(t, err, session.ErrNoTokens)

	login(t, sf, testutil.UserEmail)
	before := sf.Session().AccessToken()
	refresh := sf.Session().RefreshToken()

	_, err = sf.RefreshToken(testCtx(t))
	require.NoError(t, err)
	assert.NotEqual(t, before, sf.Session().AccessToken())
	assert.Equal(t, refresh, sf.Session().RefreshToken())
}

func TestStorefront_DeleteAccountClearsSession(t *testing.T) {
	sf, _ := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)

	_, err := sf.DeleteAccount(testCtx(t))
	require.NoError(t, err)
	assert.False(t, sf.Session().Authenticated())
}

func TestStorefront_CheckoutInvalidatesOrdersAndCart(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{1: 2})
	addr := mock.AddAddress(models.Address{Name: "Home", Address: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701"})

	cart, err := sf.GetCart()
	require.NoError(t, err)
	defer cart.Close()
	orders, err := sf.GetOrders()
	require.NoError(t, err)
	defer orders.Close()
	settled(t, cart)
	assert.Empty(t, settled(t, orders).Data)

	resp, err := sf.Checkout(testCtx(t), models.CheckoutRequest{AddressID: addr.ID, DeliveryTime: "9:00 AM - 11:00 AM", PaymentMethod: "card"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "6.98", resp.Total.StringFixed(2))

	assert.Empty(t, settled(t, cart).Data.Items)
	list := settled(t, orders).Data
	require.Len(t, list, 1)
	assert.Equal(t, resp.OrderID, list[0].ID)

	detail, err := Fetch(testCtx(t), sf, Orders.GetOrder, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, detail.Status)
	assert.Len(t, detail.Timeline, 3)
}

func TestStorefront_AdminUpdatesOrderStatus(t *testing.T) {
	sf, mock := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)
	mock.SetCart(map[int64]int{3: 1})
	addr := mock.AddAddress(models.Address{Name: "Home", Address: "1 Main St"})
	resp, err := sf.Checkout(testCtx(t), models.CheckoutRequest{AddressID: addr.ID, DeliveryTime: "9:00 AM - 11:00 AM"})
	require.NoError(t, err)

	login(t, sf, testutil.AdminEmail)
	all, err := sf.GetAllOrders()
	require.NoError(t, err)
	defer all.Close()
	require.Len(t, settled(t, all).Data, 1)

	_, err = sf.UpdateOrderStatus(testCtx(t), resp.OrderID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, settled(t, all).Data[0].Status)
}

func TestStorefront_AdminEndpointsRejectCustomers(t *testing.T) {
	sf, _ := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)

	users, err := sf.GetUsers()
	require.NoError(t, err)
	defer users.Close()

	state := settled(t, users)
	assert.True(t, state.IsError())
	assert.Equal(t, http.StatusForbidden, client.StatusOf(state.Err))
}

func TestStorefront_WishlistAndAddresses(t *testing.T) {
	sf, _ := newTestStorefront(t)
	login(t, sf, testutil.UserEmail)

	wishlist, err := sf.GetWishlist()
	require.NoError(t, err)
	defer wishlist.Close()
	assert.Empty(t, settled(t, wishlist).Data)

	_, err = sf.AddToWishlist(testCtx(t), 4)
	require.NoError(t, err)
	items := settled(t, wishlist).Data
	require.Len(t, items, 1)
	assert.Equal(t, "Apples", items[0].Product.Name)

	_, err = sf.RemoveFromWishlist(testCtx(t), 4)
	require.NoError(t, err)
	assert.Empty(t, settled(t, wishlist).Data)

	addresses, err := sf.GetAddresses()
	require.NoError(t, err)
	defer addresses.Close()
	settled(t, addresses)

	created, err := sf.CreateAddress(testCtx(t), models.Address{Name: "Work", Address: "2 Side St", City: "Springfield"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.Len(t, settled(t, addresses).Data, 1)

	require.NoError(t, sf.DeleteAddress(testCtx(t), created.ID))
	assert.Empty(t, settled(t, addresses).Data)
}

func TestFetch_ReturnsQueryError(t *testing.T) {
	sf, _ := newTestStorefront(t)

	_, err := Fetch(testCtx(t), sf, Orders.GetOrders, None{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))

	products, err := Fetch(testCtx(t), sf, Products.SearchProducts, "mil")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].Name)
}
