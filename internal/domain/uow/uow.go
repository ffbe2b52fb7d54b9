package uow

import (
	"context"

	"lending-ledger/internal/domain/loan"
)

// Repos are the repositories bound to one transaction.
type Repos struct {
	Loans loan.Repository
}

type UnitOfWork interface {
	// WithinBorrowerTx runs fn in a single transaction that holds the
	// borrower's loan rows locked, so concurrent writers in other processes
	// see a consistent per-borrower list. An error from fn rolls back.
	WithinBorrowerTx(ctx context.Context, borrower string, fn func(r Repos) error) error
}
