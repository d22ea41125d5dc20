package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalFlatShape(t *testing.T) {
	raw := `{
		"id": 7, "name": "Apples", "price": "3.49", "rating": 4.5,
		"weight": "1kg", "origin": "NZ", "organic": true, "storage": "cool",
		"calories": "52", "fiber": "2.4g",
		"reviews": [{"id": 1, "user": "ann", "rating": 5, "comment": "crisp", "date": "2024-03-01"}]
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, int64(7), p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("3.49")))
	assert.Equal(t, "1kg", p.Details.Weight)
	assert.Equal(t, "NZ", p.Details.Origin)
	require.NotNil(t, p.Details.Organic)
	assert.True(t, *p.Details.Organic)
	assert.Equal(t, "52", p.Nutrition.Calories)
	assert.Equal(t, "2.4g", p.Nutrition.Fiber)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "ann", p.Reviews[0].User)
}

func TestProduct_UnmarshalNestedShape(t *testing.T) {
	raw := `{"id": 8, "name": "Milk", "price": 3.49,
		"details": {"weight": "1l", "storage": "fridge"},
		"nutrition": {"protein": "3.4g"}}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "1l", p.Details.Weight)
	assert.Equal(t, "fridge", p.Details.Storage)
	assert.Equal(t, "3.4g", p.Nutrition.Protein)
	assert.Equal(t, "3.49", p.Price.StringFixed(2))
}

func TestOrder_UnmarshalBackendAliases(t *testing.T) {
	raw := `{"order_id": "ORD-1-3", "created_at": "2024-03-14T10:00:00Z", "total": "12.50",
		"status": "processing",
		"items": [{"product": {"name": "Bread"}, "quantity": 1, "price": "2.50"}]}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	assert.Equal(t, "ORD-1-3", o.ID)
	assert.Equal(t, "2024-03-14T10:00:00Z", o.Date)
	assert.Equal(t, OrderStatusProcessing, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Bread", o.Items[0].Name)
}

func TestOrderDetail_Unmarshal(t *testing.T) {
	raw := `{"id": "ORD-9", "date": "2024-03-14", "total": 20, "status": "shipped",
		"items": [], "shipping_address": "1 Main St", "contact_info": "555-0100",
		"timeline": [
			{"title": "Order Confirmed", "status": "completed", "timestamp": "t1"},
			{"title": "Out for Delivery", "status": "current", "timestamp": "t3"}
		]}`

	var d OrderDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, "ORD-9", d.ID)
	assert.Equal(t, OrderStatusShipped, d.Status)
	assert.Equal(t, "1 Main St", d.ShippingAddress)
	assert.Equal(t, "555-0100", d.ContactInfo)
	require.Len(t, d.Timeline, 2)
	assert.Equal(t, StepCurrent, d.Timeline[1].Status)
}

func TestCart_Item(t *testing.T) {
	cart := Cart{Items: []CartItem{{ID: 1, Quantity: 2}, {ID: 4, Quantity: 1}}}

	item, ok := cart.Item(4)
	assert.True(t, ok)
	assert.Equal(t, 1, item.Quantity)

	_, ok = cart.Item(99)
	assert.False(t, ok)
}

func TestUpdateCartItemRequest_OmitsID(t *testing.T) {
	body, err := json.Marshal(UpdateCartItemRequest{CartItemID: 3, Quantity: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity": 5}`, string(body))
}
