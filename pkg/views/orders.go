package views

import (
	"context"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// OrderRow is one order in a list.
type OrderRow struct {
	ID          string
	Date        string
	OrderStatus string
	Total       string
	ItemCount   int
}

func rowOf(o models.Order) OrderRow {
	row := OrderRow{ID: o.ID, Date: o.Date, OrderStatus: statusLabel(o.Status), Total: Money(o.Total)}
	for _, item := range o.Items {
		row.ItemCount += item.Quantity
	}
	return row
}

func rowsOf(orders []models.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, rowOf(o))
	}
	return rows
}

func statusLabel(s models.OrderStatus) string {
	r, size := utf8.DecodeRuneInString(string(s))
	if r == utf8.RuneError {
		return string(s)
	}
	return string(unicode.ToUpper(r)) + string(s[size:])
}

// OrderList renders the account's orders, or all orders for admins.
type OrderList struct {
	Page
	Orders []OrderRow
}

func NewOrderList(state cache.State[[]models.Order]) OrderList {
	view := OrderList{
		Page: resolve(state, emptySlice[models.Order], messages{
			loading: "Loading orders...",
			failed:  "Failed to load orders.",
			empty:   "No orders found.",
		}),
	}
	if state.HasData {
		view.Orders = rowsOf(state.Data)
	}
	return view
}

// OrderLine is one rendered order item.
type OrderLine struct {
	Name     string
	Quantity int
	Price    string
}

// TimelineRow is one step of the order progress.
type TimelineRow struct {
	Title       string
	Description string
	Status      models.StepStatus
	Timestamp   string
}

// OrderDetail renders one order.
type OrderDetail struct {
	Page
	OrderRow
	Items           []OrderLine
	ShippingAddress string
	ContactInfo     string
	Timeline        []TimelineRow
}

func NewOrderDetail(state cache.State[models.OrderDetail]) OrderDetail {
	view := OrderDetail{
		Page: resolve(state, nil, messages{
			loading:  "Loading order details...",
			failed:   "Failed to load order details.",
			notFound: "Order not found.",
		}),
	}
	if !state.HasData {
		return view
	}
	d := state.Data
	view.OrderRow = rowOf(d.Order)
	view.ShippingAddress = d.ShippingAddress
	view.ContactInfo = d.ContactInfo
	for _, item := range d.Items {
		view.Items = append(view.Items, OrderLine{Name: item.Name, Quantity: item.Quantity, Price: Money(item.Price)})
	}
	for _, step := range d.Timeline {
		view.Timeline = append(view.Timeline, TimelineRow{
			Title:       step.Title,
			Description: step.Description,
			Status:      step.Status,
			Timestamp:   step.Timestamp,
		})
	}
	return view
}

// SpendingRow is one month of spending.
type SpendingRow struct {
	Month  string
	Amount string
}

// Dashboard renders the account overview.
type Dashboard struct {
	Page
	TotalOrders    int
	TotalSpent     string
	RecentOrders   []OrderRow
	SpendingTrends []SpendingRow
}

func NewDashboard(state cache.State[models.Dashboard]) Dashboard {
	view := Dashboard{
		Page: resolve(state, func(d models.Dashboard) bool { return d.TotalOrders == 0 && len(d.RecentOrders) == 0 }, messages{
			loading: "Loading...",
			failed:  "Failed to load dashboard.",
			empty:   "No orders yet.",
		}),
	}
	if !state.HasData {
		return view
	}
	d := state.Data
	view.TotalOrders = d.TotalOrders
	view.TotalSpent = Money(d.TotalSpent)
	view.RecentOrders = rowsOf(d.RecentOrders)
	for _, p := range d.SpendingTrends {
		view.SpendingTrends = append(view.SpendingTrends, SpendingRow{Month: p.Month, Amount: Money(p.Amount)})
	}
	return view
}

// SlotOption is a delivery slot choice.
type SlotOption struct {
	Time      string
	Available bool
}

// Checkout renders the checkout page from the cart, the delivery slots
// and the saved addresses.
type Checkout struct {
	Page
	Cart          Cart
	DeliveryTimes []SlotOption
	Addresses     []AddressRow
	// SlotsMessage is set when delivery slots are not available yet.
	SlotsMessage string
}

func NewCheckout(cart cache.State[models.Cart], slots cache.State[[]models.DeliveryTime], addresses cache.State[[]models.Address]) Checkout {
	view := Checkout{Cart: NewCart(cart)}

	switch {
	case cart.IsError():
		view.Page = Page{Status: StatusError, Message: "Failed to load cart items.", Err: cart.Err}
	case cart.IsLoading():
		view.Page = Page{Status: StatusLoading, Message: "Loading cart items..."}
	default:
		view.Page = view.Cart.Page
	}

	switch {
	case slots.IsError():
		view.SlotsMessage = "Failed to load delivery times."
	case slots.IsLoading():
		view.SlotsMessage = "Loading delivery times..."
	}
	for _, s := range slots.Data {
		view.DeliveryTimes = append(view.DeliveryTimes, SlotOption{Time: s.Time, Available: s.Available})
	}
	if addresses.HasData {
		view.Addresses = addressRows(addresses.Data)
	}
	return view
}

// ConfirmationPath is where a frontend navigates after checkout.
func ConfirmationPath(orderID string) string {
	return "/checkout/confirmation?order_id=" + url.QueryEscape(orderID)
}

// CheckoutForm is the checkout input.
type CheckoutForm struct {
	AddressID     int64
	DeliveryTime  string
	PaymentMethod string
	PromoCode     string
}

// DefaultPaymentMethod is used when the form leaves it blank.
const DefaultPaymentMethod = "card"

// CheckoutController places orders.
type CheckoutController struct {
	controller
}

func NewCheckoutController(sf *api.Storefront) *CheckoutController {
	return &CheckoutController{controller: newController(sf, "checkout-controller")}
}

// Submit validates the form and places the order. Invalid input never
// reaches the network. On success Result.Redirect is the confirmation
// path.
func (c *CheckoutController) Submit(ctx context.Context, form CheckoutForm) Result {
	if form.AddressID <= 0 {
		return c.reject("checkout", invalid("address", "Please select a delivery address."))
	}
	if strings.TrimSpace(form.DeliveryTime) == "" {
		return c.reject("checkout", invalid("delivery_time", "Please select a delivery time."))
	}
	if form.PaymentMethod == "" {
		form.PaymentMethod = DefaultPaymentMethod
	}

	resp, err := c.sf.Checkout(ctx, models.CheckoutRequest{
		AddressID:     form.AddressID,
		DeliveryTime:  form.DeliveryTime,
		PaymentMethod: form.PaymentMethod,
		PromoCode:     strings.TrimSpace(form.PromoCode),
	})
	if err != nil {
		return c.outcome("checkout", err, "", "An error occurred during checkout. Please try again.")
	}

	notice := resp.Message
	if notice == "" {
		notice = "Order placed successfully"
	}
	c.logger.Info().Str("order_id", resp.OrderID).Msg("Order placed")
	return Result{OK: true, Notice: notice, Redirect: ConfirmationPath(resp.OrderID)}
}
