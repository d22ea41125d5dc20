package views

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/logging"
)

// ErrorClassValidation marks input rejected before any request is made.
const ErrorClassValidation client.ErrorClass = "validation"

// ValidationError is returned by controllers for invalid input.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Class returns ErrorClassValidation.
func (e *ValidationError) Class() client.ErrorClass {
	return ErrorClassValidation
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Result is the outcome of a controller action.
type Result struct {
	OK bool
	// Notice is a transient message for the user.
	Notice string
	Err    error
	// Redirect is the path to navigate to, if any.
	Redirect string
}

func succeeded(notice string) Result {
	return Result{OK: true, Notice: notice}
}

func failed(err error, notice string) Result {
	return Result{Err: err, Notice: notice}
}

func invalid(field, message string) Result {
	return Result{Err: &ValidationError{Field: field, Message: message}, Notice: message}
}

// controller is embedded by every controller.
type controller struct {
	sf     *api.Storefront
	logger zerolog.Logger
}

func newController(sf *api.Storefront, component string) controller {
	return controller{sf: sf, logger: logging.NewLogger(component)}
}

// SetLogger replaces the controller logger.
func (c *controller) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

func (c *controller) reject(action string, r Result) Result {
	c.logger.Debug().Str("action", action).Err(r.Err).Msg("Input rejected")
	return r
}

func (c *controller) outcome(action string, err error, onSuccess, onFailure string) Result {
	if err != nil {
		c.logger.Warn().
			Str("action", action).
			Int("status_code", client.StatusOf(err)).
			Err(err).
			Msg("Action failed")
		return failed(err, onFailure)
	}
	return succeeded(onSuccess)
}
