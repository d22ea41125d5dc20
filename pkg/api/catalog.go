package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/models"
)

// ProductUpdate patches the product with ID.
type ProductUpdate struct {
	ID    int64
	Input models.ProductInput
}

// Categories is the category group.
var Categories = struct {
	GetCategories     QueryDef[None, []models.Category]
	GetCategoryBySlug QueryDef[string, models.Category]
}{
	GetCategories: QueryDef[None, []models.Category]{
		Name:     "getCategories",
		Path:     "/categories/",
		Provides: tags[None](cache.TypeTag(TagCategory)),
	},
	GetCategoryBySlug: QueryDef[string, models.Category]{
		Name: "getCategoryBySlug",
		Path: "/categories/{slug}/",
		Bind: func(slug string) Call {
			return Call{PathParams: map[string]string{"slug": slug}}
		},
		Provides: func(slug string) []cache.Tag {
			return []cache.Tag{cache.TypeTag(TagCategory), cache.IDTag(TagCategory, slug)}
		},
	},
}

// Products is the catalogue group, including the admin product writes.
var Products = struct {
	GetProducts        QueryDef[url.Values, []models.Product]
	GetProduct         QueryDef[int64, models.Product]
	SearchProducts     QueryDef[string, []models.Product]
	GetRelatedProducts QueryDef[int64, []models.Product]
	GetProductReviews  QueryDef[int64, []models.Review]
	CreateProduct      MutationDef[models.ProductInput, models.Product]
	UpdateProduct      MutationDef[ProductUpdate, models.Product]
	DeleteProduct      MutationDef[int64, None]
}{
	GetProducts: QueryDef[url.Values, []models.Product]{
		Name: "getProducts",
		Path: "/products/",
		Bind: func(params url.Values) Call {
			return Call{Query: params}
		},
		Provides: tags[url.Values](cache.TypeTag(TagProduct)),
	},
	GetProduct: QueryDef[int64, models.Product]{
		Name:     "getProduct",
		Path:     "/products/{id}/",
		Bind:     byID,
		Provides: idTag(TagProduct),
	},
	SearchProducts: QueryDef[string, []models.Product]{
		Name: "searchProducts",
		Path: "/products/search/",
		Bind: func(q string) Call {
			return Call{Query: url.Values{"q": []string{q}}}
		},
		Provides: tags[string](cache.TypeTag(TagProduct)),
	},
	GetRelatedProducts: QueryDef[int64, []models.Product]{
		Name:     "getRelatedProducts",
		Path:     "/products/{id}/related/",
		Bind:     byID,
		Provides: tags[int64](cache.TypeTag(TagProduct)),
	},
	GetProductReviews: QueryDef[int64, []models.Review]{
		Name:     "getProductReviews",
		Path:     "/products/{id}/reviews/",
		Bind:     byID,
		Provides: idTag(TagProduct),
	},
	CreateProduct: MutationDef[models.ProductInput, models.Product]{
		Name:        "createProduct",
		Method:      http.MethodPost,
		Path:        "/admin/products/create/",
		Bind:        withBody[models.ProductInput],
		Invalidates: tags[models.ProductInput](cache.TypeTag(TagProduct)),
	},
	UpdateProduct: MutationDef[ProductUpdate, models.Product]{
		Name:   "updateProduct",
		Method: http.MethodPatch,
		Path:   "/admin/products/{id}/update/",
		Bind: func(u ProductUpdate) Call {
			call := byID(u.ID)
			call.Body = u.Input
			return call
		},
		Invalidates: func(u ProductUpdate) []cache.Tag {
			return []cache.Tag{cache.IDTag(TagProduct, u.ID)}
		},
	},
	DeleteProduct: MutationDef[int64, None]{
		Name:        "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/admin/products/{id}/delete/",
		Bind:        byID,
		Invalidates: tags[int64](cache.TypeTag(TagProduct)),
	},
}

// ProductParams builds the filter arguments of GetProducts.
func ProductParams(category string, page int) url.Values {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}
