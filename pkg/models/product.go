// Package models holds the storefront's wire types. They are plain value
// records decoded from API responses; money is carried as decimal.Decimal
// and is never recomputed on the client.
package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ProductDetails describes physical attributes of a product.
type ProductDetails struct {
	Weight  string `json:"weight,omitempty"`
	Origin  string `json:"origin,omitempty"`
	Organic *bool  `json:"organic,omitempty"`
	Storage string `json:"storage,omitempty"`
}

// Nutrition holds per-serving nutrition facts as display strings.
type Nutrition struct {
	Calories string `json:"calories,omitempty"`
	Protein  string `json:"protein,omitempty"`
	Carbs    string `json:"carbs,omitempty"`
	Fat      string `json:"fat,omitempty"`
	Fiber    string `json:"fiber,omitempty"`
}

// IsZero reports whether no nutrition fact is set.
func (n Nutrition) IsZero() bool {
	return n == Nutrition{}
}

// Review is a customer review attached to a product.
type Review struct {
	ID      int64   `json:"id"`
	User    string  `json:"user"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
	Date    string  `json:"date"`
}

// Product is a catalogue item.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Details     ProductDetails  `json:"details"`
	Nutrition   Nutrition       `json:"nutrition"`
	Reviews     []Review        `json:"reviews,omitempty"`
}

// UnmarshalJSON accepts both the nested shape (details, nutrition objects)
// and the flat shape the backend serializer emits, where weight, origin,
// calories and friends sit at the top level.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var wire struct {
		plain
		ProductDetails
		Nutrition
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = Product(wire.plain)
	if p.Details == (ProductDetails{}) {
		p.Details = wire.ProductDetails
	}
	if p.Nutrition.IsZero() {
		p.Nutrition = wire.Nutrition
	}
	return nil
}

// ProductSummary is the short product shape embedded in cart and wishlist
// entries.
type ProductSummary struct {
	ID    int64           `json:"id,omitempty"`
	Name  string          `json:"name"`
	Image string          `json:"image,omitempty"`
	Price decimal.Decimal `json:"price,omitempty"`
}

// Category groups products under a slug.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Products    []Product `json:"products"`
}

// ProductInput is the admin payload for creating or patching a product.
// Zero-valued fields are omitted so PATCH only touches what is set.
type ProductInput struct {
	Name        string           `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description string           `json:"description,omitempty"`
	Image       string           `json:"image,omitempty"`
	Category    *int64           `json:"category,omitempty"`
	Weight      string           `json:"weight,omitempty"`
	Origin      string           `json:"origin,omitempty"`
	Organic     *bool            `json:"organic,omitempty"`
	Storage     string           `json:"storage,omitempty"`
}
