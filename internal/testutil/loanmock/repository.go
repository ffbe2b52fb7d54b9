package loanmock

import (
	"context"
	"errors"

	domain "lending-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

var ErrUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return ErrUnimplemented.
type Repo struct {
	InsertFn func(ctx context.Context, l *domain.Loan) (uint64, error)
	FindFn   func(ctx context.Context, f domain.Filter) ([]domain.Loan, error)
	UpdateFn func(ctx context.Context, id uint64, p domain.Patch) error
}

func (m *Repo) Insert(ctx context.Context, l *domain.Loan) (uint64, error) {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, l)
	}
	return 0, ErrUnimplemented
}

func (m *Repo) Find(ctx context.Context, f domain.Filter) ([]domain.Loan, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, f)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) Update(ctx context.Context, id uint64, p domain.Patch) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, p)
	}
	return ErrUnimplemented
}
