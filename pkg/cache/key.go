package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies one cacheable query: the endpoint name plus its
// serialized arguments.
type Key struct {
	// Endpoint is the query name (e.g. "getProduct").
	Endpoint string

	// PathParams are the arguments substituted into the path (e.g. {"id": "42"}).
	PathParams map[string]string

	// QueryParams are the query string arguments (e.g. {"q": "milk"}).
	QueryParams url.Values
}

// String generates a deterministic key string.
// Format: endpoint:param1=val1:param2=val2:query1=val1
//
// Names and values are query-escaped, so the separators ':', '=' and ','
// only ever appear as separators.
//
// Example:
//
//	getProduct:id=42
//	searchProducts:q=milk
func (k Key) String() string {
	parts := []string{strings.TrimSpace(k.Endpoint)}

	// Path params (sorted for determinism)
	if len(k.PathParams) > 0 {
		pathKeys := make([]string, 0, len(k.PathParams))
		for key := range k.PathParams {
			pathKeys = append(pathKeys, key)
		}
		sort.Strings(pathKeys)

		for _, key := range pathKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(key), url.QueryEscape(k.PathParams[key])))
		}
	}

	// Query params (sorted, multi-values joined in order)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := make([]string, len(k.QueryParams[key]))
			for i, v := range k.QueryParams[key] {
				values[i] = url.QueryEscape(v)
			}
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(key), strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}
