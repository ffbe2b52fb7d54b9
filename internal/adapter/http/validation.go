package http

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"lending-ledger/internal/domain/loan"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// borrower = 0x-prefixed 20-byte hex address, any case
	_ = v.RegisterValidation("evmaddr", func(fl validator.FieldLevel) bool {
		return common.IsHexAddress(fl.Field().String())
	})
	// token amount as a plain non-negative decimal, e.g. "150" or "0.5"
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return loan.IsDecimalAmount(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "evmaddr":
			out = append(out, FieldError{Field: field, Message: "must be a 0x-prefixed EVM address"})
		case "amount":
			out = append(out, FieldError{Field: field, Message: "must be a non-negative decimal amount"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
