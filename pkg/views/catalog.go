package views

import (
	"fmt"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// ProductCard is a product tile in lists.
type ProductCard struct {
	ID     int64
	Name   string
	Price  string
	Rating string
	Image  string
}

func cardOf(p models.Product) ProductCard {
	card := ProductCard{ID: p.ID, Name: p.Name, Price: Money(p.Price), Image: p.Image}
	if p.Rating > 0 {
		card.Rating = fmt.Sprintf("%.1f", p.Rating)
	}
	return card
}

func cardsOf(products []models.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, cardOf(p))
	}
	return cards
}

// ProductList renders a product listing or search result.
type ProductList struct {
	Page
	Query    string
	Products []ProductCard
}

// NewProductList renders state. query is the search term, empty for a
// plain listing.
func NewProductList(state cache.State[[]models.Product], query string) ProductList {
	empty := "No products found"
	if query != "" {
		empty = fmt.Sprintf("No products found for %q", query)
	}
	view := ProductList{
		Page: resolve(state, emptySlice[models.Product], messages{
			loading: "Loading products...",
			failed:  "Failed to load products.",
			empty:   empty,
		}),
		Query: query,
	}
	if state.HasData {
		view.Products = cardsOf(state.Data)
	}
	return view
}

// Field is a labelled value.
type Field struct {
	Label string
	Value string
}

// ReviewLine is one rendered review.
type ReviewLine struct {
	User    string
	Rating  string
	Comment string
	Date    string
}

// ProductDetail renders the product page.
type ProductDetail struct {
	Page
	ProductCard
	Description string
	Details     []Field
	Nutrition   []Field
	Reviews     []ReviewLine
	Related     []ProductCard
}

// NewProductDetail renders a product with its related products. Related
// products are optional; their failure does not fail the page.
func NewProductDetail(product cache.State[models.Product], related cache.State[[]models.Product]) ProductDetail {
	view := ProductDetail{
		Page: resolve(product, nil, messages{
			loading:  "Loading product...",
			failed:   "Error Loading Product",
			notFound: "Product not found.",
		}),
	}
	if !product.HasData {
		return view
	}

	p := product.Data
	view.ProductCard = cardOf(p)
	view.Description = p.Description
	view.Details = nonEmptyFields(
		Field{"Weight", p.Details.Weight},
		Field{"Origin", p.Details.Origin},
		Field{"Organic", organic(p.Details.Organic)},
		Field{"Storage", p.Details.Storage},
	)
	view.Nutrition = nonEmptyFields(
		Field{"Calories", p.Nutrition.Calories},
		Field{"Protein", p.Nutrition.Protein},
		Field{"Carbs", p.Nutrition.Carbs},
		Field{"Fat", p.Nutrition.Fat},
		Field{"Fiber", p.Nutrition.Fiber},
	)
	for _, r := range p.Reviews {
		view.Reviews = append(view.Reviews, ReviewLine{
			User:    r.User,
			Rating:  fmt.Sprintf("%.1f", r.Rating),
			Comment: r.Comment,
			Date:    r.Date,
		})
	}
	if related.HasData {
		view.Related = cardsOf(related.Data)
	}
	return view
}

func organic(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

func nonEmptyFields(fields ...Field) []Field {
	out := fields[:0]
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// CategoryCard is a category tile.
type CategoryCard struct {
	Name         string
	Slug         string
	Description  string
	ProductCount int
}

// CategoryList renders the category overview.
type CategoryList struct {
	Page
	Categories []CategoryCard
}

func NewCategoryList(state cache.State[[]models.Category]) CategoryList {
	view := CategoryList{
		Page: resolve(state, emptySlice[models.Category], messages{
			loading: "Loading categories...",
			failed:  "Error loading categories",
			empty:   "No categories found.",
		}),
	}
	for _, c := range state.Data {
		view.Categories = append(view.Categories, CategoryCard{
			Name:         c.Name,
			Slug:         c.Slug,
			Description:  c.Description,
			ProductCount: len(c.Products),
		})
	}
	return view
}

// Category renders one category with its products.
type Category struct {
	Page
	Name        string
	Slug        string
	Description string
	Products    []ProductCard
}

func NewCategory(state cache.State[models.Category]) Category {
	view := Category{
		Page: resolve(state, func(c models.Category) bool { return len(c.Products) == 0 }, messages{
			loading:  "Loading...",
			failed:   "Failed to load category data.",
			empty:    "No products found in this category.",
			notFound: "Category not found.",
		}),
	}
	if state.HasData {
		view.Name = state.Data.Name
		view.Slug = state.Data.Slug
		view.Description = state.Data.Description
		view.Products = cardsOf(state.Data.Products)
	}
	return view
}
