package cache

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag_String(t *testing.T) {
	assert.Equal(t, "Cart", TypeTag("Cart").String())
	assert.Equal(t, "Product:42", IDTag("Product", 42).String())
}

func TestTagIndex_Match(t *testing.T) {
	ix := newTagIndex()
	ix.add("getProducts", []Tag{TypeTag("Product")})
	ix.add("getProduct:id=1", []Tag{IDTag("Product", 1)})
	ix.add("getProduct:id=2", []Tag{IDTag("Product", 2)})
	ix.add("getCategoryBySlug:slug=dairy", []Tag{TypeTag("Category"), IDTag("Category", "dairy")})

	sorted := func(keys []string) []string {
		sort.Strings(keys)
		return keys
	}

	t.Run("type tag matches every id", func(t *testing.T) {
		assert.Equal(t,
			[]string{"getProduct:id=1", "getProduct:id=2", "getProducts"},
			sorted(ix.match(TypeTag("Product"))))
	})

	t.Run("id tag matches exact item only", func(t *testing.T) {
		assert.Equal(t, []string{"getProduct:id=1"}, ix.match(IDTag("Product", 1)))
	})

	t.Run("keys with several tags are reported once", func(t *testing.T) {
		assert.Equal(t, []string{"getCategoryBySlug:slug=dairy"}, ix.match(TypeTag("Category")))
	})

	t.Run("unknown tag", func(t *testing.T) {
		assert.Empty(t, ix.match(TypeTag("Order")))
		assert.Empty(t, ix.match(IDTag("Product", 99)))
	})

	t.Run("remove", func(t *testing.T) {
		ix.remove("getProduct:id=2", []Tag{IDTag("Product", 2)})
		assert.Empty(t, ix.match(IDTag("Product", 2)))
		ix.remove("getCategoryBySlug:slug=dairy", []Tag{TypeTag("Category"), IDTag("Category", "dairy")})
		assert.NotContains(t, ix.byType, "Category")
	})
}
