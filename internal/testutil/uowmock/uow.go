package uowmock

import (
	"context"
	"errors"

	"lending-ledger/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Leave WithinBorrowerTxFn nil to get errUnimplemented.
type UoW struct {
	WithinBorrowerTxFn func(ctx context.Context, borrower string, fn func(r uow.Repos) error) error
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithWithinBorrowerTx(fn func(context.Context, string, func(uow.Repos) error) error) *UoW {
	m.WithinBorrowerTxFn = fn
	return m
}

// Passthrough runs fn directly against repos, like a transaction that
// always commits.
func Passthrough(repos uow.Repos) *UoW {
	return New().WithWithinBorrowerTx(func(_ context.Context, _ string, fn func(uow.Repos) error) error {
		return fn(repos)
	})
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinBorrowerTx(ctx context.Context, borrower string, fn func(r uow.Repos) error) error {
	if m.WithinBorrowerTxFn != nil {
		return m.WithinBorrowerTxFn(ctx, borrower, fn)
	}
	return errUnimplemented
}
