package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint without args",
			key:  Key{Endpoint: "getCart"},
			want: "getCart",
		},
		{
			name: "endpoint with path params",
			key: Key{
				Endpoint:   "getProduct",
				PathParams: map[string]string{"id": "42"},
			},
			want: "getProduct:id=42",
		},
		{
			name: "endpoint with query params",
			key: Key{
				Endpoint:    "searchProducts",
				QueryParams: url.Values{"q": []string{"milk"}},
			},
			want: "searchProducts:q=milk",
		},
		{
			name: "multiple query params (sorted)",
			key: Key{
				Endpoint: "getProducts",
				QueryParams: url.Values{
					"ordering": []string{"price"},
					"category": []string{"dairy"},
				},
			},
			want: "getProducts:category=dairy:ordering=price",
		},
		{
			name: "multi-value query param",
			key: Key{
				Endpoint:    "getProducts",
				QueryParams: url.Values{"tag": []string{"organic", "local"}},
			},
			want: "getProducts:tag=organic,local",
		},
		{
			name: "path and query params",
			key: Key{
				Endpoint:    "getRelatedProducts",
				PathParams:  map[string]string{"id": "7"},
				QueryParams: url.Values{"limit": []string{"4"}},
			},
			want: "getRelatedProducts:id=7:limit=4",
		},
		{
			name: "values are escaped",
			key: Key{
				Endpoint:    "searchProducts",
				QueryParams: url.Values{"q": []string{"whole milk, 1l"}},
			},
			want: "searchProducts:q=whole+milk%2C+1l",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Determinism(t *testing.T) {
	key := Key{
		Endpoint:   "getProducts",
		PathParams: map[string]string{"b": "2", "a": "1", "c": "3"},
		QueryParams: url.Values{
			"z": []string{"last"},
			"a": []string{"first"},
			"m": []string{"middle"},
		},
	}

	first := key.String()
	for i := 0; i < 100; i++ {
		if got := key.String(); got != first {
			t.Fatalf("Key.String() not deterministic: got %q, want %q", got, first)
		}
	}
}

func TestKey_SeparatorsInValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
	}{
		{
			name: "colon and equals in a value",
			a: Key{
				Endpoint:    "getProducts",
				QueryParams: url.Values{"category": []string{"dairy:page=2"}},
			},
			b: Key{
				Endpoint:    "getProducts",
				QueryParams: url.Values{"category": []string{"dairy"}, "page": []string{"2"}},
			},
		},
		{
			name: "comma in a value",
			a: Key{
				Endpoint:    "getProducts",
				QueryParams: url.Values{"q": []string{"a", "b"}},
			},
			b: Key{
				Endpoint:    "getProducts",
				QueryParams: url.Values{"q": []string{"a,b"}},
			},
		},
		{
			name: "separators in a path param",
			a: Key{
				Endpoint:   "getOrder",
				PathParams: map[string]string{"id": "1:x=2"},
			},
			b: Key{
				Endpoint:   "getOrder",
				PathParams: map[string]string{"id": "1", "x": "2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.String() == tt.b.String() {
				t.Errorf("distinct keys serialize to the same string %q", tt.a.String())
			}
		})
	}
}
