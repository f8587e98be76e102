// Package validation checks work records before any store access.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
)

// Item-sum policies.
const (
	PolicyNotExceed = "not_exceed"
	PolicyExact     = "exact"
)

// ErrInvalid marks every validation failure.
var ErrInvalid = errors.New("invalid work record")

// Error describes one rejected field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// Details is the map form used in HTTP error bodies.
func (e *Error) Details() map[string]interface{} {
	return map[string]interface{}{
		"field":  e.Field,
		"reason": e.Reason,
	}
}

// Options configures the rules that are policy rather than shape.
type Options struct {
	ItemSumPolicy          string
	RequirePositivePallets bool
}

// Validator validates work records.
type Validator struct {
	structs *validator.Validate
	opts    Options
}

// New returns a Validator. An unknown item-sum policy is an error.
func New(opts Options) (*Validator, error) {
	if opts.ItemSumPolicy == "" {
		opts.ItemSumPolicy = PolicyNotExceed
	}
	if opts.ItemSumPolicy != PolicyNotExceed && opts.ItemSumPolicy != PolicyExact {
		return nil, fmt.Errorf("unknown item sum policy %q", opts.ItemSumPolicy)
	}
	structs := validator.New(validator.WithRequiredStructEnabled())
	structs.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{structs: structs, opts: opts}, nil
}

// Validate returns nil or an *Error for the first rejected field.
func (v *Validator) Validate(r *v1.WorkRecord) error {
	if r == nil {
		return &Error{Field: "record", Reason: "is required"}
	}

	if err := v.structs.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fromFieldError(fieldErrs[0])
		}
		return &Error{Field: "record", Reason: err.Error()}
	}

	if r.WorkDate.IsZero() {
		return &Error{Field: "work_date", Reason: "is required"}
	}
	if v.opts.RequirePositivePallets && r.TotalPallets <= 0 {
		return &Error{Field: "total_pallets", Reason: "must be greater than 0"}
	}
	if r.Status != "" && !r.Status.Valid() {
		return &Error{Field: "status", Reason: fmt.Sprintf("unknown status %q", r.Status)}
	}
	for i, item := range r.Items {
		if item.Unit != "" && !item.Unit.Valid() {
			return &Error{Field: fmt.Sprintf("items[%d].unit", i), Reason: fmt.Sprintf("unknown unit %q", item.Unit)}
		}
	}

	if len(r.Items) > 0 {
		sum := r.Items.QuantitySum()
		switch v.opts.ItemSumPolicy {
		case PolicyExact:
			if sum != r.TotalPallets {
				return &Error{
					Field:  "items",
					Reason: fmt.Sprintf("item quantities sum to %d, must equal total_pallets %d", sum, r.TotalPallets),
				}
			}
		default:
			if sum > r.TotalPallets {
				return &Error{
					Field:  "items",
					Reason: fmt.Sprintf("item quantities sum to %d, exceeds total_pallets %d", sum, r.TotalPallets),
				}
			}
		}
	}
	return nil
}

func fromFieldError(fe validator.FieldError) *Error {
	field := jsonFieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return &Error{Field: field, Reason: "is required"}
	case "gte":
		return &Error{Field: field, Reason: "must be >= " + fe.Param()}
	default:
		return &Error{Field: field, Reason: fmt.Sprintf("failed %q check", fe.Tag())}
	}
}

// jsonFieldPath drops the struct name from "WorkRecord.items[0].item_name".
func jsonFieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
