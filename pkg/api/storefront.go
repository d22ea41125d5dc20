// Package api declares the storefront's resource endpoint groups and the
// Storefront, which runs reads through the query cache and writes
// straight through the adapter followed by tag invalidation.
package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/models"
	"github.com/Sternrassler/storefront-client/pkg/session"
)

// Storefront binds the adapter, its session and the query cache.
type Storefront struct {
	client *client.Client
	cache  *cache.Store
	logger zerolog.Logger
}

// New creates a Storefront. The caller owns store and closes it.
func New(c *client.Client, store *cache.Store) *Storefront {
	return &Storefront{
		client: c,
		cache:  store,
		logger: log.With().Str("component", "storefront-api").Logger(),
	}
}

// SetLogger replaces the component logger.
func (sf *Storefront) SetLogger(logger zerolog.Logger) {
	sf.logger = logger
}

// Client returns the HTTP adapter.
func (sf *Storefront) Client() *client.Client { return sf.client }

// Cache returns the query cache.
func (sf *Storefront) Cache() *cache.Store { return sf.cache }

// Session returns the authentication session.
func (sf *Storefront) Session() *session.Session { return sf.client.Session() }

// Query is a typed subscription to a cached read.
type Query[R any] struct {
	sub *cache.Subscription
}

// Key returns the cache key of the query.
func (q *Query[R]) Key() cache.Key { return q.sub.Key() }

// State returns the current typed state.
func (q *Query[R]) State() cache.State[R] {
	return cache.StateOf[R](q.sub.State())
}

// Updates signals every state change; convert with cache.StateOf.
func (q *Query[R]) Updates() <-chan cache.Snapshot { return q.sub.Updates() }

// Wait blocks until the query has settled.
func (q *Query[R]) Wait(ctx context.Context) (cache.State[R], error) {
	snap, err := q.sub.Wait(ctx)
	return cache.StateOf[R](snap), err
}

// Refetch forces a new request.
func (q *Query[R]) Refetch() error { return q.sub.Refetch() }

// Close releases the subscription.
func (q *Query[R]) Close() { q.sub.Unsubscribe() }

// Subscribe registers a subscription to def with arg.
func Subscribe[A, R any](sf *Storefront, def QueryDef[A, R], arg A) (*Query[R], error) {
	sub, err := sf.cache.Subscribe(def.Query(sf.client, arg))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", def.Name, err)
	}
	return &Query[R]{sub: sub}, nil
}

// Fetch reads def with arg through the cache and returns the settled
// result.
func Fetch[A, R any](ctx context.Context, sf *Storefront, def QueryDef[A, R], arg A) (R, error) {
	var zero R
	q, err := Subscribe(sf, def, arg)
	if err != nil {
		return zero, err
	}
	defer q.Close()

	state, err := q.Wait(ctx)
	if err != nil {
		return zero, err
	}
	if state.Err != nil {
		return state.Data, state.Err
	}
	return state.Data, nil
}

// Mutate performs def with arg. On success the declared tags are
// invalidated, so subscribed queries providing them refetch.
func Mutate[A, R any](ctx context.Context, sf *Storefront, def MutationDef[A, R], arg A) (R, error) {
	var out R
	raw, err := sf.client.Do(ctx, def.Request(arg))
	if err == nil {
		if decodeErr := client.Decode(raw, &out); decodeErr != nil {
			err = fmt.Errorf("%s: %w", def.Name, decodeErr)
		}
	}

	if def.Settle != nil {
		if settleErr := def.Settle(ctx, sf.Session(), arg, out, err); settleErr != nil && err == nil {
			err = fmt.Errorf("%s: %w", def.Name, settleErr)
		}
	}
	if err != nil && !def.InvalidateOnError {
		return out, err
	}

	if tags := def.Tags(arg); len(tags) > 0 {
		keys := sf.cache.Invalidate(tags...)
		sf.logger.Debug().
			Str("endpoint", def.Name).
			Int("invalidated", len(keys)).
			Msg("Mutation invalidated cached queries")
	}
	return out, err
}

// Reads.

func (sf *Storefront) GetAccount() (*Query[models.User], error) {
	return Subscribe(sf, Auth.GetAccount, None{})
}

func (sf *Storefront) GetCategories() (*Query[[]models.Category], error) {
	return Subscribe(sf, Categories.GetCategories, None{})
}

func (sf *Storefront) GetCategoryBySlug(slug string) (*Query[models.Category], error) {
	return Subscribe(sf, Categories.GetCategoryBySlug, slug)
}

func (sf *Storefront) GetProducts(params url.Values) (*Query[[]models.Product], error) {
	return Subscribe(sf, Products.GetProducts, params)
}

func (sf *Storefront) GetProduct(id int64) (*Query[models.Product], error) {
	return Subscribe(sf, Products.GetProduct, id)
}

func (sf *Storefront) SearchProducts(q string) (*Query[[]models.Product], error) {
	return Subscribe(sf, Products.SearchProducts, q)
}

func (sf *Storefront) GetRelatedProducts(id int64) (*Query[[]models.Product], error) {
	return Subscribe(sf, Products.GetRelatedProducts, id)
}

func (sf *Storefront) GetProductReviews(id int64) (*Query[[]models.Review], error) {
	return Subscribe(sf, Products.GetProductReviews, id)
}

func (sf *Storefront) GetCart() (*Query[models.Cart], error) {
	return Subscribe(sf, Cart.GetCart, None{})
}

func (sf *Storefront) GetWishlist() (*Query[[]models.WishlistItem], error) {
	return Subscribe(sf, Wishlist.GetWishlist, None{})
}

func (sf *Storefront) GetOrders() (*Query[[]models.Order], error) {
	return Subscribe(sf, Orders.GetOrders, None{})
}

func (sf *Storefront) GetOrder(id string) (*Query[models.OrderDetail], error) {
	return Subscribe(sf, Orders.GetOrder, id)
}

func (sf *Storefront) GetDeliveryTimes() (*Query[[]models.DeliveryTime], error) {
	return Subscribe(sf, Orders.GetDeliveryTimes, None{})
}

func (sf *Storefront) GetAllOrders() (*Query[[]models.Order], error) {
	return Subscribe(sf, Orders.GetAllOrders, None{})
}

func (sf *Storefront) GetDashboard() (*Query[models.Dashboard], error) {
	return Subscribe(sf, Dashboard.GetDashboard, None{})
}

func (sf *Storefront) GetAddresses() (*Query[[]models.Address], error) {
	return Subscribe(sf, Addresses.GetAddresses, None{})
}

func (sf *Storefront) GetUsers() (*Query[[]models.User], error) {
	return Subscribe(sf, Admin.GetUsers, None{})
}

// Writes.

func (sf *Storefront) Signup(ctx context.Context, req models.SignupRequest) (models.Message, error) {
	return Mutate(ctx, sf, Auth.Signup, req)
}

func (sf *Storefront) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) (models.Message, error) {
	return Mutate(ctx, sf, Auth.VerifyEmail, req)
}

func (sf *Storefront) ResendVerificationEmail(ctx context.Context, email string) (models.Message, error) {
	return Mutate(ctx, sf, Auth.ResendVerificationEmail, models.EmailRequest{Email: email})
}

// Login authenticates and stores the issued tokens in the session.
func (sf *Storefront) Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	return Mutate(ctx, sf, Auth.Login, creds)
}

// RefreshToken renews the access token with the session's refresh token.
func (sf *Storefront) RefreshToken(ctx context.Context) (models.TokenPair, error) {
	refresh := sf.Session().RefreshToken()
	if refresh == "" {
		return models.TokenPair{}, session.ErrNoTokens
	}
	return Mutate(ctx, sf, Auth.RefreshToken, models.RefreshRequest{Refresh: refresh})
}

// Logout revokes the refresh token. The session is cleared once the
// request resolves, even when it fails.
func (sf *Storefront) Logout(ctx context.Context) (models.Message, error) {
	return Mutate(ctx, sf, Auth.Logout, models.LogoutRequest{RefreshToken: sf.Session().RefreshToken()})
}

func (sf *Storefront) UpdateAccount(ctx context.Context, update models.UserUpdate) (models.User, error) {
	return Mutate(ctx, sf, Auth.UpdateAccount, update)
}

// DeleteAccount deletes the signed-in account and clears the session.
func (sf *Storefront) DeleteAccount(ctx context.Context) (models.Message, error) {
	return Mutate(ctx, sf, Auth.DeleteAccount, None{})
}

func (sf *Storefront) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (models.Message, error) {
	return Mutate(ctx, sf, Auth.ChangePassword, req)
}

func (sf *Storefront) ResetPasswordRequest(ctx context.Context, email string) (models.Message, error) {
	return Mutate(ctx, sf, Auth.ResetPasswordRequest, models.EmailRequest{Email: email})
}

func (sf *Storefront) ResetPasswordConfirm(ctx context.Context, req models.ResetPasswordConfirmRequest) (models.Message, error) {
	return Mutate(ctx, sf, Auth.ResetPasswordConfirm, req)
}

func (sf *Storefront) CheckEmail(ctx context.Context, email string) (models.EmailCheck, error) {
	return Mutate(ctx, sf, Auth.CheckEmail, models.EmailRequest{Email: email})
}

func (sf *Storefront) CreateProduct(ctx context.Context, input models.ProductInput) (models.Product, error) {
	return Mutate(ctx, sf, Products.CreateProduct, input)
}

func (sf *Storefront) UpdateProduct(ctx context.Context, id int64, input models.ProductInput) (models.Product, error) {
	return Mutate(ctx, sf, Products.UpdateProduct, ProductUpdate{ID: id, Input: input})
}

func (sf *Storefront) DeleteProduct(ctx context.Context, id int64) error {
	_, err := Mutate(ctx, sf, Products.DeleteProduct, id)
	return err
}

func (sf *Storefront) AddToCart(ctx context.Context, req models.AddToCartRequest) (models.Message, error) {
	return Mutate(ctx, sf, Cart.AddToCart, req)
}

func (sf *Storefront) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (models.Message, error) {
	return Mutate(ctx, sf, Cart.UpdateCartItem, models.UpdateCartItemRequest{CartItemID: itemID, Quantity: quantity})
}

func (sf *Storefront) RemoveFromCart(ctx context.Context, itemID int64) (models.Message, error) {
	return Mutate(ctx, sf, Cart.RemoveFromCart, itemID)
}

func (sf *Storefront) AddToWishlist(ctx context.Context, productID int64) (models.Message, error) {
	return Mutate(ctx, sf, Wishlist.AddToWishlist, productID)
}

func (sf *Storefront) RemoveFromWishlist(ctx context.Context, productID int64) (models.Message, error) {
	return Mutate(ctx, sf, Wishlist.RemoveFromWishlist, productID)
}

func (sf *Storefront) Checkout(ctx context.Context, req models.CheckoutRequest) (models.CheckoutResponse, error) {
	return Mutate(ctx, sf, Orders.Checkout, req)
}

func (sf *Storefront) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Message, error) {
	return Mutate(ctx, sf, Orders.UpdateOrderStatus, models.OrderStatusUpdate{ID: id, Status: status})
}

func (sf *Storefront) CreateAddress(ctx context.Context, addr models.Address) (models.Address, error) {
	return Mutate(ctx, sf, Addresses.CreateAddress, addr)
}

func (sf *Storefront) UpdateAddress(ctx context.Context, addr models.Address) (models.Address, error) {
	return Mutate(ctx, sf, Addresses.UpdateAddress, addr)
}

func (sf *Storefront) DeleteAddress(ctx context.Context, id int64) error {
	_, err := Mutate(ctx, sf, Addresses.DeleteAddress, id)
	return err
}

func (sf *Storefront) UpdateUser(ctx context.Context, update models.UserUpdate) (models.User, error) {
	return Mutate(ctx, sf, Admin.UpdateUser, update)
}

func (sf *Storefront) DeleteUser(ctx context.Context, id int64) error {
	_, err := Mutate(ctx, sf, Admin.DeleteUser, id)
	return err
}
