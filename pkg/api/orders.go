package api

import (
	"net/http"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// Orders is the order group, including the admin order views.
var Orders = struct {
	GetOrders         QueryDef[None, []models.Order]
	GetOrder          QueryDef[string, models.OrderDetail]
	Checkout          MutationDef[models.CheckoutRequest, models.CheckoutResponse]
	GetDeliveryTimes  QueryDef[None, []models.DeliveryTime]
	GetAllOrders      QueryDef[None, []models.Order]
	UpdateOrderStatus MutationDef[models.OrderStatusUpdate, models.Message]
}{
	GetOrders: QueryDef[None, []models.Order]{
		Name:     "getOrders",
		Path:     "/orders/",
		Provides: tags[None](cache.TypeTag(TagOrder)),
	},
	GetOrder: QueryDef[string, models.OrderDetail]{
		Name: "getOrder",
		Path: "/orders/{id}/",
		Bind: orderID,
		Provides: func(id string) []cache.Tag {
			return []cache.Tag{cache.IDTag(TagOrder, id)}
		},
	},
	Checkout: MutationDef[models.CheckoutRequest, models.CheckoutResponse]{
		Name:        "checkout",
		Method:      http.MethodPost,
		Path:        "/orders/checkout/",
		Bind:        withBody[models.CheckoutRequest],
		Invalidates: tags[models.CheckoutRequest](cache.TypeTag(TagOrder), cache.TypeTag(TagCart)),
	},
	GetDeliveryTimes: QueryDef[None, []models.DeliveryTime]{
		Name:     "getDeliveryTimes",
		Path:     "/delivery-times/",
		Provides: tags[None](cache.TypeTag(TagDeliveryTimes)),
	},
	GetAllOrders: QueryDef[None, []models.Order]{
		Name:     "getAllOrders",
		Path:     "/admin/orders/",
		Provides: tags[None](cache.TypeTag(TagOrder)),
	},
	UpdateOrderStatus: MutationDef[models.OrderStatusUpdate, models.Message]{
		Name:   "updateOrderStatus",
		Method: http.MethodPatch,
		Path:   "/orders/{id}/update-status/",
		Bind: func(u models.OrderStatusUpdate) Call {
			call := orderID(u.ID)
			call.Body = u
			return call
		},
		Invalidates: func(u models.OrderStatusUpdate) []cache.Tag {
			return []cache.Tag{cache.TypeTag(TagOrder), cache.IDTag(TagOrder, u.ID)}
		},
	},
}

// Dashboard is the account dashboard group. It is derived from orders and
// provides the Order tag.
var Dashboard = struct {
	GetDashboard QueryDef[None, models.Dashboard]
}{
	GetDashboard: QueryDef[None, models.Dashboard]{
		Name:     "getDashboard",
		Path:     "/dashboard/",
		Provides: tags[None](cache.TypeTag(TagOrder)),
	},
}

func orderID(id string) Call {
	return Call{PathParams: map[string]string{"id": id}}
}
