package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")
)

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Conflict reasons shared by every store.
const (
	ReasonReviewed   = "You have already reviewed this product"
	ReasonInWishlist = "Product already in wishlist"
	ReasonSKUTaken   = "Product SKU already exists"
	ReasonSlugTaken  = "Category slug already exists"
)

// ConflictError is a write rejected by a uniqueness rule. Reason is safe to show to users.
type ConflictError struct {
	Reason string
}

func NewConflict(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	if e.Reason == "" {
		return ErrConflict.Error()
	}
	return e.Reason + ": " + ErrConflict.Error()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
)

// KindOf classifies err. Anything that is not a known domain condition is a storage failure.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindStorage
	}
}

// FieldErrors returns the field messages of a wrapped ValidationError, if any.
func FieldErrors(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// ConflictReason returns the reason of a wrapped ConflictError, or "" when there is none.
func ConflictReason(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}
