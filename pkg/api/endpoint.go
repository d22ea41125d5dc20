package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/session"
)

// Tag types shared by the endpoint groups.
const (
	TagUser          = "User"
	TagProduct       = "Product"
	TagOrder         = "Order"
	TagCart          = "Cart"
	TagWishlist      = "Wishlist"
	TagCategory      = "Category"
	TagDeliveryTimes = "DeliveryTimes"
	TagAddress       = "Address"
)

// None is the argument or result of endpoints that take or return nothing.
type None struct{}

// Call is the request shape an endpoint derives from its argument.
type Call struct {
	PathParams map[string]string
	Query      url.Values
	Body       any
}

// QueryDef declares a cacheable read.
type QueryDef[A, R any] struct {
	Name string
	// Path is a template; {name} segments are replaced from Call.PathParams.
	Path     string
	Bind     func(A) Call
	Provides func(A) []cache.Tag
}

// MutationDef declares a write. Invalidates is applied only after the
// request succeeds, unless InvalidateOnError is set.
type MutationDef[A, R any] struct {
	Name              string
	Method            string
	Path              string
	Bind              func(A) Call
	Invalidates       func(A) []cache.Tag
	InvalidateOnError bool

	// Settle runs once the request has resolved, before invalidation. It
	// sees the request error and drives session transitions.
	Settle func(ctx context.Context, sess *session.Session, arg A, out R, err error) error
}

// clone copies the parameter maps so later changes by the caller do not
// reach a key or request built from c.
func (c Call) clone() Call {
	out := Call{Body: c.Body}
	if c.PathParams != nil {
		out.PathParams = make(map[string]string, len(c.PathParams))
		for k, v := range c.PathParams {
			out.PathParams[k] = v
		}
	}
	if c.Query != nil {
		out.Query = make(url.Values, len(c.Query))
		for k, v := range c.Query {
			out.Query[k] = append([]string(nil), v...)
		}
	}
	return out
}

func (d QueryDef[A, R]) call(arg A) Call {
	if d.Bind == nil {
		return Call{}
	}
	return d.Bind(arg).clone()
}

func (d QueryDef[A, R]) request(call Call) client.Request {
	return client.Request{
		Name:   d.Name,
		Method: http.MethodGet,
		Path:   expand(d.Path, call.PathParams),
		Query:  call.Query,
	}
}

func (d QueryDef[A, R]) key(call Call) cache.Key {
	return cache.Key{Endpoint: d.Name, PathParams: call.PathParams, QueryParams: call.Query}
}

// Request returns the adapter request for arg.
func (d QueryDef[A, R]) Request(arg A) client.Request {
	return d.request(d.call(arg))
}

// Key returns the cache key for arg.
func (d QueryDef[A, R]) Key(arg A) cache.Key {
	return d.key(d.call(arg))
}

// Tags returns the tags a result for arg provides.
func (d QueryDef[A, R]) Tags(arg A) []cache.Tag {
	if d.Provides == nil {
		return nil
	}
	return d.Provides(arg)
}

// Query builds the cache registration that fetches through c.
func (d QueryDef[A, R]) Query(c *client.Client, arg A) cache.Query {
	call := d.call(arg)
	req := d.request(call)
	return cache.Query{
		Key:  d.key(call),
		Tags: d.Tags(arg),
		Fetch: func(ctx context.Context) (any, error) {
			var out R
			raw, err := c.Do(ctx, req)
			if err != nil {
				return out, err
			}
			if err := client.Decode(raw, &out); err != nil {
				return out, fmt.Errorf("%s: %w", d.Name, err)
			}
			return out, nil
		},
	}
}

// Request returns the adapter request for arg.
func (d MutationDef[A, R]) Request(arg A) client.Request {
	var call Call
	if d.Bind != nil {
		call = d.Bind(arg).clone()
	}
	return client.Request{
		Name:   d.Name,
		Method: d.Method,
		Path:   expand(d.Path, call.PathParams),
		Query:  call.Query,
		Body:   call.Body,
	}
}

// Tags returns the tags a successful call with arg invalidates.
func (d MutationDef[A, R]) Tags(arg A) []cache.Tag {
	if d.Invalidates == nil {
		return nil
	}
	return d.Invalidates(arg)
}

// expand substitutes {name} segments of a path template.
func expand(template string, params map[string]string) string {
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", url.PathEscape(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func tags[A any](list ...cache.Tag) func(A) []cache.Tag {
	return func(A) []cache.Tag { return list }
}

func withBody[A any](arg A) Call {
	return Call{Body: arg}
}

func byID(id int64) Call {
	return Call{PathParams: map[string]string{"id": strconv.FormatInt(id, 10)}}
}

func idTag(typ string) func(int64) []cache.Tag {
	return func(id int64) []cache.Tag { return []cache.Tag{cache.IDTag(typ, id)} }
}
