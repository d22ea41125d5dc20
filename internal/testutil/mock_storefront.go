// Package testutil provides a mock storefront backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sternrassler/storefront-client/pkg/models"
)

// Seed credentials of the mock backend.
const (
	UserEmail    = "alice@example.com"
	UserPassword = "secret"
	AdminEmail   = "admin@example.com"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockStorefront is an in-memory storefront backend served under /api.
type MockStorefront struct {
	server *httptest.Server
	mux    *http.ServeMux

	mu        sync.Mutex
	overrides map[string]http.HandlerFunc
	gates     map[string]chan struct{}
	counts    map[string]int
	headers   map[string]http.Header
	total     int

	tokens     map[string]int64 // access token -> user id
	refresh    map[string]int64
	nextToken  int
	users      map[int64]*mockUser
	nextUser   int64
	categories []models.Category
	products   map[int64]models.Product
	nextProd   int64
	cart       map[int64][]models.CartItem // user id -> lines
	nextItem   int64
	wishlist   map[int64][]int64
	orders     map[int64][]models.OrderDetail
	nextOrder  int
	addresses  map[int64][]models.Address
	nextAddr   int64
}

type mockUser struct {
	models.User
	password string
}

// NewMockStorefront starts a mock backend seeded with a small catalogue,
// a customer and an admin.
func NewMockStorefront() *MockStorefront {
	m := &MockStorefront{
		mux:       http.NewServeMux(),
		overrides: make(map[string]http.HandlerFunc),
		gates:     make(map[string]chan struct{}),
		counts:    make(map[string]int),
		headers:   make(map[string]http.Header),
		tokens:    make(map[string]int64),
		refresh:   make(map[string]int64),
		users:     make(map[int64]*mockUser),
		products:  make(map[int64]models.Product),
		cart:      make(map[int64][]models.CartItem),
		wishlist:  make(map[int64][]int64),
		orders:    make(map[int64][]models.OrderDetail),
		addresses: make(map[int64][]models.Address),
	}
	m.seed()
	m.routes()

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")

		m.mu.Lock()
		m.total++
		m.counts[r.Method+" "+path]++
		m.headers[path] = r.Header.Clone()
		override := m.overrides[path]
		gate := m.gates[path]
		m.mu.Unlock()

		if gate != nil {
			<-gate
		}
		if override != nil {
			override(w, r)
			return
		}
		m.mux.ServeHTTP(w, r)
	}))
	return m
}

// URL returns the API base URL (server URL plus /api).
func (m *MockStorefront) URL() string {
	return m.server.URL + "/api"
}

// Close shuts down the mock server and releases held requests.
func (m *MockStorefront) Close() {
	m.mu.Lock()
	for path, gate := range m.gates {
		close(gate)
		delete(m.gates, path)
	}
	m.mu.Unlock()
	m.server.Close()
}

// SetHandler overrides the handler of a path (relative to /api).
func (m *MockStorefront) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockStorefront) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Hold blocks every request to path until the returned release is called.
func (m *MockStorefront) Hold(path string) (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gates[path] = gate
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gates[path] == gate {
				delete(m.gates, path)
				close(gate)
			}
			m.mu.Unlock()
		})
	}
}

// Count returns how many requests hit method and path.
func (m *MockStorefront) Count(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[method+" "+path]
}

// RequestCount returns the number of requests served.
func (m *MockStorefront) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// LastHeader returns the headers of the last request to path.
func (m *MockStorefront) LastHeader(path string) http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headers[path]
}

// Reset clears the request counters.
func (m *MockStorefront) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = 0
	m.counts = make(map[string]int)
	m.headers = make(map[string]http.Header)
}

// SetCart replaces the cart of the seeded customer.
func (m *MockStorefront) SetCart(lines map[int64]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uid := m.userByEmail(UserEmail).ID
	m.cart[uid] = nil
	ids := make([]int64, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		m.addLine(uid, id, lines[id])
	}
}

// AddAddress stores an address for the seeded customer and returns it.
func (m *MockStorefront) AddAddress(addr models.Address) models.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid := m.userByEmail(UserEmail).ID
	m.nextAddr++
	addr.ID = m.nextAddr
	m.addresses[uid] = append(m.addresses[uid], addr)
	return addr
}

func (m *MockStorefront) seed() {
	dec := decimal.RequireFromString
	organic := true

	m.addUser(models.User{Name: "Alice", Email: UserEmail, Phone: "555-0100"}, UserPassword)
	m.addUser(models.User{Name: "Admin", Email: AdminEmail, IsStaff: true}, UserPassword)

	for _, p := range []models.Product{
		{Name: "Milk", Price: dec("3.49"), Rating: 4.5, Image: "/img/milk.png",
			Details: models.ProductDetails{Weight: "1L", Origin: "Local farm", Organic: &organic, Storage: "Refrigerate"},
			Nutrition: models.Nutrition{Calories: "42", Protein: "3.4g"},
			Reviews:   []models.Review{{ID: 1, User: "Bob", Rating: 5, Comment: "Fresh", Date: "2024-03-01"}}},
		{Name: "Yogurt", Price: dec("1.25"), Rating: 4.1, Image: "/img/yogurt.png"},
		{Name: "Bread", Price: dec("2.99"), Rating: 4.0, Image: "/img/bread.png"},
		{Name: "Apples", Price: dec("4.50"), Rating: 4.7, Image: "/img/apples.png"},
	} {
		m.nextProd++
		p.ID = m.nextProd
		m.products[p.ID] = p
	}

	m.categories = []models.Category{
		{ID: 1, Name: "Dairy", Slug: "dairy", Description: "Milk, cheese and yogurt"},
		{ID: 2, Name: "Bakery", Slug: "bakery"},
		{ID: 3, Name: "Produce", Slug: "produce"},
		{ID: 4, Name: "Frozen", Slug: "frozen"},
	}
}

// categoryOf maps seeded products to category slugs.
var categoryOf = map[int64]string{1: "dairy", 2: "dairy", 3: "bakery", 4: "produce"}

func (m *MockStorefront) addUser(u models.User, password string) *mockUser {
	m.nextUser++
	u.ID = m.nextUser
	active := true
	u.IsActive = &active
	user := &mockUser{User: u, password: password}
	m.users[u.ID] = user
	return user
}

func (m *MockStorefront) userByEmail(email string) *mockUser {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// routes registers exact-match patterns; every path ends in a slash.
func (m *MockStorefront) routes() {
	// Auth and account
	m.mux.HandleFunc("POST /api/signup/{$}", m.handleSignup)
	m.mux.HandleFunc("POST /api/verify-email/{$}", m.message("Email verified successfully."))
	m.mux.HandleFunc("POST /api/resend-verification-email/{$}", m.message("Verification email sent."))
	m.mux.HandleFunc("POST /api/login/{$}", m.handleLogin)
	m.mux.HandleFunc("POST /api/token/refresh/{$}", m.handleRefresh)
	m.mux.HandleFunc("POST /api/logout/{$}", m.authed(m.handleLogout))
	m.mux.HandleFunc("GET /api/account/{$}", m.authed(m.handleGetAccount))
	m.mux.HandleFunc("PATCH /api/account/{$}", m.authed(m.handleUpdateAccount))
	m.mux.HandleFunc("DELETE /api/account/delete/{$}", m.authed(m.handleDeleteAccount))
	m.mux.HandleFunc("POST /api/account/change-password/{$}", m.authed(m.handleChangePassword))
	m.mux.HandleFunc("POST /api/reset-password-request/{$}", m.message("Password reset email sent."))
	m.mux.HandleFunc("POST /api/reset-password-confirm/{$}", m.message("Password has been reset."))
	m.mux.HandleFunc("POST /api/check-email/{$}", m.handleCheckEmail)
	m.mux.HandleFunc("GET /api/dashboard/{$}", m.authed(m.handleDashboard))
	m.mux.HandleFunc("GET /api/account/addresses/{$}", m.authed(m.handleAddresses))
	m.mux.HandleFunc("POST /api/account/addresses/{$}", m.authed(m.handleCreateAddress))
	m.mux.HandleFunc("PATCH /api/account/addresses/{id}/{$}", m.authed(m.handleUpdateAddress))
	m.mux.HandleFunc("DELETE /api/account/addresses/{id}/{$}", m.authed(m.handleDeleteAddress))

	// Catalogue
	m.mux.HandleFunc("GET /api/categories/{$}", m.handleCategories)
	m.mux.HandleFunc("GET /api/categories/{slug}/{$}", m.handleCategory)
	m.mux.HandleFunc("GET /api/products/{$}", m.handleProducts)
	m.mux.HandleFunc("GET /api/products/search/{$}", m.handleSearch)
	m.mux.HandleFunc("GET /api/products/{id}/{$}", m.handleProduct)
	m.mux.HandleFunc("GET /api/products/{id}/related/{$}", m.handleRelated)
	m.mux.HandleFunc("GET /api/products/{id}/reviews/{$}", m.handleReviews)
	m.mux.HandleFunc("POST /api/admin/products/create/{$}", m.admin(m.handleCreateProduct))
	m.mux.HandleFunc("PATCH /api/admin/products/{id}/update/{$}", m.admin(m.handleUpdateProduct))
	m.mux.HandleFunc("DELETE /api/admin/products/{id}/delete/{$}", m.admin(m.handleDeleteProduct))

	// Cart and wishlist
	m.mux.HandleFunc("GET /api/cart/{$}", m.authed(m.handleCart))
	m.mux.HandleFunc("POST /api/cart/add/{$}", m.authed(m.handleAddToCart))
	m.mux.HandleFunc("PATCH /api/cart/update/{id}/{$}", m.authed(m.handleUpdateCartItem))
	m.mux.HandleFunc("DELETE /api/cart/remove/{id}/{$}", m.authed(m.handleRemoveFromCart))
	m.mux.HandleFunc("GET /api/wishlist/{$}", m.authed(m.handleWishlist))
	m.mux.HandleFunc("POST /api/wishlist/add/{$}", m.authed(m.handleAddToWishlist))
	m.mux.HandleFunc("DELETE /api/wishlist/remove/{$}", m.authed(m.handleRemoveFromWishlist))

	// Orders
	m.mux.HandleFunc("GET /api/orders/{$}", m.authed(m.handleOrders))
	m.mux.HandleFunc("POST /api/orders/checkout/{$}", m.authed(m.handleCheckout))
	m.mux.HandleFunc("GET /api/orders/{id}/{$}", m.authed(m.handleOrder))
	m.mux.HandleFunc("PATCH /api/orders/{id}/update-status/{$}", m.admin(m.handleUpdateOrderStatus))
	m.mux.HandleFunc("GET /api/delivery-times/{$}", m.handleDeliveryTimes)
	m.mux.HandleFunc("GET /api/admin/orders/{$}", m.admin(m.handleAllOrders))

	// Admin users
	m.mux.HandleFunc("GET /api/admin/users/{$}", m.admin(m.handleUsers))
	m.mux.HandleFunc("PATCH /api/admin/users/{id}/{$}", m.admin(m.handleAdminUpdateUser))
	m.mux.HandleFunc("DELETE /api/admin/users/{id}/{$}", m.admin(m.handleAdminDeleteUser))
}

// userHandler receives the authenticated user; m.mu is held.
type userHandler func(w http.ResponseWriter, r *http.Request, user *mockUser)

func (m *MockStorefront) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		uid, ok := m.tokens[token]
		user := m.users[uid]
		if token == "" || !ok || user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next(w, r, user)
	}
}

func (m *MockStorefront) admin(next userHandler) http.HandlerFunc {
	return m.authed(func(w http.ResponseWriter, r *http.Request, user *mockUser) {
		if !user.IsStaff {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
			return
		}
		next(w, r, user)
	})
}

func (m *MockStorefront) message(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Message{Message: msg})
	}
}

func (m *MockStorefront) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !readJSON(w, r, &req) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userByEmail(req.Email) != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"user with this email already exists."}})
		return
	}
	m.addUser(models.User{Name: req.Name, Email: req.Email}, req.Password)
	writeJSON(w, http.StatusCreated, models.Message{Message: "User registered successfully. Please verify your email."})
}

func (m *MockStorefront) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !readJSON(w, r, &creds) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.userByEmail(creds.Email)
	if user == nil || user.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, m.issue(user.ID))
}

func (m *MockStorefront) issue(uid int64) models.TokenPair {
	m.nextToken++
	pair := models.TokenPair{
		Access:  fmt.Sprintf("access-%d", m.nextToken),
		Refresh: fmt.Sprintf("refresh-%d", m.nextToken),
	}
	m.tokens[pair.Access] = uid
	m.refresh[pair.Refresh] = uid
	return pair
}

func (m *MockStorefront) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !readJSON(w, r, &req) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	uid, ok := m.refresh[req.Refresh]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	m.nextToken++
	access := fmt.Sprintf("access-%d", m.nextToken)
	m.tokens[access] = uid
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access})
}

func (m *MockStorefront) handleLogout(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var req models.LogoutRequest
	if !readJSON(w, r, &req) {
		return
	}
	if _, ok := m.refresh[req.RefreshToken]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Token is invalid or expired"})
		return
	}
	delete(m.refresh, req.RefreshToken)
	delete(m.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	writeJSON(w, http.StatusOK, models.Message{Message: "Logout successful"})
}

func (m *MockStorefront) handleGetAccount(w http.ResponseWriter, r *http.Request, user *mockUser) {
	writeJSON(w, http.StatusOK, user.User)
}

func (m *MockStorefront) handleUpdateAccount(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var update models.UserUpdate
	if !readJSON(w, r, &update) {
		return
	}
	applyUserUpdate(&user.User, update)
	writeJSON(w, http.StatusOK, user.User)
}

func applyUserUpdate(u *models.User, update models.UserUpdate) {
	if update.Name != "" {
		u.Name = update.Name
	}
	if update.Email != "" {
		u.Email = update.Email
	}
	if update.Phone != "" {
		u.Phone = update.Phone
	}
	if update.Avatar != "" {
		u.Avatar = update.Avatar
	}
	if update.IsStaff != nil {
		u.IsStaff = *update.IsStaff
	}
	if update.IsActive != nil {
		active := *update.IsActive
		u.IsActive = &active
	}
}

func (m *MockStorefront) handleDeleteAccount(w http.ResponseWriter, r *http.Request, user *mockUser) {
	delete(m.users, user.ID)
	writeJSON(w, http.StatusOK, models.Message{Message: "Account deleted successfully."})
}

func (m *MockStorefront) handleChangePassword(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var req models.ChangePasswordRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.OldPassword != user.password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Old password is incorrect."}})
		return
	}
	user.password = req.NewPassword
	writeJSON(w, http.StatusOK, models.Message{Message: "Password changed successfully."})
}

func (m *MockStorefront) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var req models.EmailRequest
	if !readJSON(w, r, &req) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	writeJSON(w, http.StatusOK, models.EmailCheck{Exists: m.userByEmail(req.Email) != nil})
}

func (m *MockStorefront) handleDashboard(w http.ResponseWriter, r *http.Request, user *mockUser) {
	orders := m.orders[user.ID]
	dash := models.Dashboard{TotalOrders: len(orders), TotalSpent: decimal.Zero}
	for i := len(orders) - 1; i >= 0; i-- {
		dash.TotalSpent = dash.TotalSpent.Add(orders[i].Total)
		if len(dash.RecentOrders) < 5 {
			dash.RecentOrders = append(dash.RecentOrders, orders[i].Order)
		}
	}
	if len(orders) > 0 {
		dash.SpendingTrends = []models.SpendingPoint{{Month: "2024-05", Amount: dash.TotalSpent}}
	}
	writeJSON(w, http.StatusOK, dash)
}

func (m *MockStorefront) handleAddresses(w http.ResponseWriter, r *http.Request, user *mockUser) {
	writeJSON(w, http.StatusOK, nonNil(m.addresses[user.ID]))
}

func (m *MockStorefront) handleCreateAddress(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var addr models.Address
	if !readJSON(w, r, &addr) {
		return
	}
	m.nextAddr++
	addr.ID = m.nextAddr
	m.addresses[user.ID] = append(m.addresses[user.ID], addr)
	writeJSON(w, http.StatusCreated, addr)
}

func (m *MockStorefront) handleUpdateAddress(w http.ResponseWriter, r *http.Request, user *mockUser) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var addr models.Address
	if !readJSON(w, r, &addr) {
		return
	}
	for i := range m.addresses[user.ID] {
		if m.addresses[user.ID][i].ID == id {
			addr.ID = id
			m.addresses[user.ID][i] = addr
			writeJSON(w, http.StatusOK, addr)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (m *MockStorefront) handleDeleteAddress(w http.ResponseWriter, r *http.Request, user *mockUser) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list := m.addresses[user.ID]
	for i := range list {
		if list[i].ID == id {
			m.addresses[user.ID] = append(list[:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (m *MockStorefront) handleCategories(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, m.withProducts(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleCategory(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slug := r.PathValue("slug")
	for _, c := range m.categories {
		if c.Slug == slug {
			writeJSON(w, http.StatusOK, m.withProducts(c))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (m *MockStorefront) withProducts(c models.Category) models.Category {
	c.Products = []models.Product{}
	for _, p := range m.sortedProducts() {
		if categoryOf[p.ID] == c.Slug {
			c.Products = append(c.Products, p)
		}
	}
	return c
}

func (m *MockStorefront) sortedProducts() []models.Product {
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockStorefront) handleProducts(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category := r.URL.Query().Get("category")
	out := []models.Product{}
	for _, p := range m.sortedProducts() {
		if category == "" || categoryOf[p.ID] == category {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleSearch(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := []models.Product{}
	if q != "" {
		for _, p := range m.sortedProducts() {
			if strings.Contains(strings.ToLower(p.Name), q) {
				out = append(out, p)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) product(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return models.Product{}, false
	}
	p, ok := m.products[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return p, ok
}

func (m *MockStorefront) handleProduct(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.product(w, r); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func (m *MockStorefront) handleRelated(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.product(w, r)
	if !ok {
		return
	}
	out := []models.Product{}
	for _, other := range m.sortedProducts() {
		if other.ID != p.ID && categoryOf[other.ID] == categoryOf[p.ID] {
			out = append(out, other)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleReviews(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.product(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(p.Reviews))
	}
}

func (m *MockStorefront) handleCreateProduct(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	var in models.ProductInput
	if !readJSON(w, r, &in) {
		return
	}
	if in.Name == "" || in.Price == nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"name": {"This field is required."}})
		return
	}
	m.nextProd++
	p := models.Product{ID: m.nextProd, Name: in.Name, Price: *in.Price, Description: in.Description, Image: in.Image}
	m.products[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (m *MockStorefront) handleUpdateProduct(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	p, ok := m.product(w, r)
	if !ok {
		return
	}
	var in models.ProductInput
	if !readJSON(w, r, &in) {
		return
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	m.products[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (m *MockStorefront) handleDeleteProduct(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	if p, ok := m.product(w, r); ok {
		delete(m.products, p.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (m *MockStorefront) cartOf(uid int64) models.Cart {
	cart := models.Cart{Items: []models.CartItem{}, TotalCartPrice: decimal.Zero}
	for _, line := range m.cart[uid] {
		cart.Items = append(cart.Items, line)
		cart.TotalCartPrice = cart.TotalCartPrice.Add(line.TotalPrice)
	}
	return cart
}

func (m *MockStorefront) handleCart(w http.ResponseWriter, r *http.Request, user *mockUser) {
	writeJSON(w, http.StatusOK, m.cartOf(user.ID))
}

// addLine adds qty of product to the cart, or sets it when set is true.
func (m *MockStorefront) addLine(uid, productID int64, qty int) {
	p := m.products[productID]
	for i, line := range m.cart[uid] {
		if line.Product.ID == productID {
			line.Quantity += qty
			line.TotalPrice = p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			m.cart[uid][i] = line
			return
		}
	}
	m.nextItem++
	m.cart[uid] = append(m.cart[uid], models.CartItem{
		ID:         m.nextItem,
		Product:    models.ProductSummary{ID: p.ID, Name: p.Name, Image: p.Image, Price: p.Price},
		Quantity:   qty,
		TotalPrice: p.Price.Mul(decimal.NewFromInt(int64(qty))),
	})
}

func (m *MockStorefront) handleAddToCart(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var req models.AddToCartRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.ProductID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Product ID is required"})
		return
	}
	if _, ok := m.products[req.ProductID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	if req.SetQuantity != nil {
		m.removeProductLine(user.ID, req.ProductID)
		if *req.SetQuantity > 0 {
			m.addLine(user.ID, req.ProductID, *req.SetQuantity)
		}
	} else {
		m.addLine(user.ID, req.ProductID, 1)
	}
	writeJSON(w, http.StatusOK, models.Message{Message: "Product added to cart"})
}

func (m *MockStorefront) removeProductLine(uid, productID int64) {
	lines := m.cart[uid]
	for i := range lines {
		if lines[i].Product.ID == productID {
			m.cart[uid] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

func (m *MockStorefront) lineIndex(uid, itemID int64) int {
	for i, line := range m.cart[uid] {
		if line.ID == itemID {
			return i
		}
	}
	return -1
}

// handleUpdateCartItem treats a quantity of zero or less as removal.
func (m *MockStorefront) handleUpdateCartItem(w http.ResponseWriter, r *http.Request, user *mockUser) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !readJSON(w, r, &req) {
		return
	}
	i := m.lineIndex(user.ID, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Cart item not found"})
		return
	}
	if req.Quantity <= 0 {
		m.cart[user.ID] = append(m.cart[user.ID][:i], m.cart[user.ID][i+1:]...)
		writeJSON(w, http.StatusOK, models.Message{Message: "Item removed from cart"})
		return
	}
	line := m.cart[user.ID][i]
	line.Quantity = req.Quantity
	line.TotalPrice = m.products[line.Product.ID].Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	m.cart[user.ID][i] = line
	writeJSON(w, http.StatusOK, models.Message{Message: "Cart item updated"})
}

func (m *MockStorefront) handleRemoveFromCart(w http.ResponseWriter, r *http.Request, user *mockUser) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	i := m.lineIndex(user.ID, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Cart item not found"})
		return
	}
	m.cart[user.ID] = append(m.cart[user.ID][:i], m.cart[user.ID][i+1:]...)
	writeJSON(w, http.StatusOK, models.Message{Message: "Item removed from cart"})
}

func (m *MockStorefront) handleWishlist(w http.ResponseWriter, r *http.Request, user *mockUser) {
	out := []models.WishlistItem{}
	for i, id := range m.wishlist[user.ID] {
		p := m.products[id]
		out = append(out, models.WishlistItem{
			ID:      int64(i + 1),
			Product: models.ProductSummary{ID: p.ID, Name: p.Name, Image: p.Image, Price: p.Price},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleAddToWishlist(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var req models.WishlistRequest
	if !readJSON(w, r, &req) {
		return
	}
	if _, ok := m.products[req.ProductID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	for _, id := range m.wishlist[user.ID] {
		if id == req.ProductID {
			writeJSON(w, http.StatusOK, models.Message{Message: "Product already in wishlist"})
			return
		}
	}
	m.wishlist[user.ID] = append(m.wishlist[user.ID], req.ProductID)
	writeJSON(w, http.StatusCreated, models.Message{Message: "Product added to wishlist"})
}

func (m *MockStorefront) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var req models.WishlistRequest
	if !readJSON(w, r, &req) {
		return
	}
	list := m.wishlist[user.ID]
	for i, id := range list {
		if id == req.ProductID {
			m.wishlist[user.ID] = append(list[:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, models.Message{Message: "Product removed from wishlist"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not in wishlist"})
}

func (m *MockStorefront) handleOrders(w http.ResponseWriter, r *http.Request, user *mockUser) {
	out := []models.Order{}
	for _, o := range m.orders[user.ID] {
		out = append(out, o.Order)
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleOrder(w http.ResponseWriter, r *http.Request, user *mockUser) {
	id := r.PathValue("id")
	for _, o := range m.orders[user.ID] {
		if o.ID == id {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Order not found"})
}

func (m *MockStorefront) handleCheckout(w http.ResponseWriter, r *http.Request, user *mockUser) {
	var req models.CheckoutRequest
	if !readJSON(w, r, &req) {
		return
	}
	cart := m.cartOf(user.ID)
	if len(cart.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cart is empty"})
		return
	}

	var shipping *models.Address
	for i := range m.addresses[user.ID] {
		if m.addresses[user.ID][i].ID == req.AddressID {
			shipping = &m.addresses[user.ID][i]
		}
	}
	if shipping == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid address"})
		return
	}

	discount := decimal.Zero
	if req.PromoCode == "SAVE20" {
		discount = cart.TotalCartPrice.Mul(decimal.RequireFromString("0.2")).Round(2)
	}
	total := cart.TotalCartPrice.Sub(discount)

	m.nextOrder++
	order := models.OrderDetail{
		Order: models.Order{
			ID:     fmt.Sprintf("ORD-%04d", m.nextOrder),
			Date:   "2024-05-01",
			Total:  total,
			Status: models.OrderStatusProcessing,
		},
		ShippingAddress: fmt.Sprintf("%s, %s, %s %s", shipping.Address, shipping.City, shipping.State, shipping.PostalCode),
		ContactInfo:     user.Email,
		Timeline: []models.TimelineStep{
			{Title: "Order Placed", Description: "Your order has been placed", Status: models.StepCompleted, Timestamp: "2024-05-01T10:00:00Z"},
			{Title: "Processing", Description: "We are preparing your order", Status: models.StepCurrent},
			{Title: "Delivered", Description: "Delivery window " + req.DeliveryTime, Status: models.StepUpcoming},
		},
	}
	for _, line := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{Name: line.Product.Name, Quantity: line.Quantity, Price: line.TotalPrice})
	}
	m.orders[user.ID] = append(m.orders[user.ID], order)
	m.cart[user.ID] = nil

	writeJSON(w, http.StatusCreated, models.CheckoutResponse{
		Message:  "Order placed successfully",
		OrderID:  order.ID,
		Total:    total,
		Discount: discount,
	})
}

func (m *MockStorefront) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	var req models.OrderStatusUpdate
	if !readJSON(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	for uid := range m.orders {
		for i := range m.orders[uid] {
			if m.orders[uid][i].ID == id {
				m.orders[uid][i].Status = req.Status
				writeJSON(w, http.StatusOK, models.Message{Message: "Order status updated"})
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Order not found"})
}

func (m *MockStorefront) handleDeliveryTimes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []models.DeliveryTime{
		{ID: 1, Time: "9:00 AM - 11:00 AM", Available: true},
		{ID: 2, Time: "11:00 AM - 1:00 PM", Available: true},
		{ID: 3, Time: "2:00 PM - 4:00 PM", Available: true},
		{ID: 4, Time: "4:00 PM - 6:00 PM", Available: false},
	})
}

func (m *MockStorefront) handleAllOrders(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	out := []models.Order{}
	uids := make([]int64, 0, len(m.orders))
	for uid := range m.orders {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	for _, uid := range uids {
		for _, o := range m.orders[uid] {
			out = append(out, o.Order)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleUsers(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (m *MockStorefront) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var update models.UserUpdate
	if !readJSON(w, r, &update) {
		return
	}
	u, ok := m.users[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	applyUserUpdate(&u.User, update)
	writeJSON(w, http.StatusOK, u.User)
}

func (m *MockStorefront) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request, _ *mockUser) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := m.users[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	delete(m.users, id)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error - " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
