package catalog

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"nexora/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrSubmitInProgress is returned when a submission is already in flight.
	ErrSubmitInProgress = errors.New("a product submission is already in progress")
	// ErrSignedOut is returned when an admin action is attempted without a signed-in user.
	ErrSignedOut = errors.New("sign in to manage products")
	// ErrUnauthorized is returned when the store refuses the session.
	ErrUnauthorized = errors.New("session is not authorized for admin actions")
)

// ValidationError reports missing or malformed input. It is raised before
// any call reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UnexpectedError wraps failures that are neither validation nor store
// rejections, such as a malformed response.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

var validate = NewValidator()

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateDraft checks the draft's struct tags and reports the first failure
// as a *ValidationError.
func ValidateDraft(draft models.ProductDraft) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag()),
		}
	}
	return &UnexpectedError{Err: err}
}

// ParsePrice converts a form value into a non-negative amount.
func ParsePrice(field, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &ValidationError{Field: field, Message: fmt.Sprintf("%s must be a number, got %q", field, raw)}
	}
	if value < 0 {
		return 0, &ValidationError{Field: field, Message: fmt.Sprintf("%s cannot be negative", field)}
	}
	return value, nil
}

// ParseOptionalPrice is ParsePrice for fields that may be left blank.
func ParseOptionalPrice(field, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := ParsePrice(field, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
