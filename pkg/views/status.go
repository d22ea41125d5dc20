// Package views turns cached query state into render models and carries
// the interaction controllers that validate input and issue mutations.
//
// Render models are pure: a New* constructor reads query state and
// returns a value describing what to show, with a Status of loading,
// error, empty or populated and a user-visible message. Controllers
// return a Result instead of producing side effects, so frontends decide
// how to present notices and where to navigate.
package views

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
)

// Status is the render state of a page.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusEmpty
	StatusPopulated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusPopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Page is embedded in every render model.
type Page struct {
	Status  Status
	Message string
	// Err is the underlying failure when Status is StatusError.
	Err error
}

// Ready reports whether the page has content to show.
func (p Page) Ready() bool {
	return p.Status == StatusPopulated
}

// messages are the user-visible texts of one page.
type messages struct {
	loading  string
	failed   string
	empty    string
	notFound string
}

// resolve derives the page state. A failed latest request wins over data
// kept from an earlier success.
func resolve[T any](state cache.State[T], isEmpty func(T) bool, m messages) Page {
	switch {
	case state.IsError():
		return Page{Status: StatusError, Message: failure(state.Err, m), Err: state.Err}
	case state.IsLoading():
		return Page{Status: StatusLoading, Message: m.loading}
	case isEmpty != nil && isEmpty(state.Data):
		return Page{Status: StatusEmpty, Message: m.empty}
	default:
		return Page{Status: StatusPopulated}
	}
}

func failure(err error, m messages) string {
	switch client.StatusOf(err) {
	case http.StatusUnauthorized:
		return "Please sign in to continue."
	case http.StatusForbidden:
		return "You do not have permission to view this page."
	case http.StatusNotFound:
		if m.notFound != "" {
			return m.notFound
		}
	}
	return m.failed
}

func emptySlice[T any](list []T) bool { return len(list) == 0 }

// Money formats an amount for display. Amounts come from the server and
// are never recomputed here.
func Money(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
