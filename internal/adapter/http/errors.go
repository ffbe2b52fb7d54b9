package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/domain/loan"
)

// statusFor maps ledger errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrParse),
		errors.Is(err, loan.ErrCollateralTooSmall),
		errors.Is(err, loan.ErrLoanTooLarge),
		errors.Is(err, loan.ErrInsufficientCollateral):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrLoanNotActive), errors.Is(err, loan.ErrLoanExpired):
		return http.StatusConflict
	case errors.Is(err, loan.ErrStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ledgerError renders err with its mapped status. Store failures keep their
// cause out of the response body.
func ledgerError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusServiceUnavailable:
		msg = loan.ErrStore.Error()
	case http.StatusInternalServerError:
		msg = "internal error"
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}
