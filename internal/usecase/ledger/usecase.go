package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"lending-ledger/internal/domain/loan"
	"lending-ledger/internal/domain/uow"
)

// Usecase is the loan ledger. Creations and repayments are serialized per
// borrower: in-process by a keyed mutex and, when a transactional store is
// configured, across processes by the unit of work.
type Usecase struct {
	repo  loan.Repository
	tx    uow.UnitOfWork
	now   func() time.Time
	locks *borrowerLocks
}

type Option func(*Usecase)

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(u *Usecase) { u.now = now }
}

// WithUnitOfWork runs creations and repayments inside tx.
func WithUnitOfWork(tx uow.UnitOfWork) Option {
	return func(u *Usecase) { u.tx = tx }
}

func NewUsecase(r loan.Repository, opts ...Option) *Usecase {
	u := &Usecase{repo: r, now: time.Now, locks: newBorrowerLocks()}
	u.tx = direct{repos: uow.Repos{Loans: r}}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// direct is the unit of work for stores without transactions.
type direct struct{ repos uow.Repos }

func (d direct) WithinBorrowerTx(_ context.Context, _ string, fn func(uow.Repos) error) error {
	return fn(d.repos)
}

// txError tags anything that is not a ledger rule outcome (begin, commit,
// lock failures) as a store failure.
func txError(err error) error {
	switch {
	case err == nil, errors.Is(err, loan.ErrStore), loan.IsRuleViolation(err):
		return err
	}
	return loan.StoreFailure(err)
}

func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	collateral, err := loan.ParseAmount(in.CollateralAmount)
	if err != nil {
		return nil, err
	}
	amount, err := loan.ParseAmount(in.LoanAmount)
	if err != nil {
		return nil, err
	}

	// Order matters: callers rely on the first failing rule being reported.
	switch {
	case collateral.Lt(loan.MinCollateral):
		return nil, loan.ErrCollateralTooSmall
	case amount.Gt(loan.MaxLoan):
		return nil, loan.ErrLoanTooLarge
	case collateral.Lt(loan.RequiredCollateral(amount)):
		return nil, loan.ErrInsufficientCollateral
	}

	unlock := u.locks.lock(in.Borrower)
	defer unlock()

	var dto *LoanDTO
	err = u.tx.WithinBorrowerTx(ctx, in.Borrower, func(r uow.Repos) error {
		existing, err := r.Loans.Find(ctx, loan.ByBorrower(in.Borrower))
		if err != nil {
			return loan.StoreFailure(err)
		}

		start := u.now().Unix()
		l := loan.Loan{
			Borrower:         in.Borrower,
			CollateralAmount: collateral,
			LoanAmount:       amount,
			StartTime:        start,
			EndTime:          start + loan.DurationSeconds,
			IsActive:         true,
		}
		id, err := r.Loans.Insert(ctx, &l)
		if err != nil {
			return loan.StoreFailure(err)
		}
		l.ID = id
		dto = toDTO(l, len(existing))
		return nil
	})
	if err != nil {
		log.Printf("ledger: error creating loan for %s: %v", in.Borrower, err)
		return nil, txError(err)
	}

	log.Printf("ledger: created loan for %s: %s tokens", in.Borrower, dto.LoanAmount)
	return dto, nil
}

// RepayLoan closes the borrower's loan at position index (creation order,
// not the ledger-wide id).
func (u *Usecase) RepayLoan(ctx context.Context, borrower string, index int) (*LoanDTO, error) {
	unlock := u.locks.lock(borrower)
	defer unlock()

	var dto *LoanDTO
	err := u.tx.WithinBorrowerTx(ctx, borrower, func(r uow.Repos) error {
		loans, err := r.Loans.Find(ctx, loan.ByBorrower(borrower))
		if err != nil {
			return loan.StoreFailure(err)
		}
		if index < 0 || index >= len(loans) {
			return loan.ErrLoanNotFound
		}
		l := loans[index]
		if !l.IsActive {
			return loan.ErrLoanNotActive
		}
		if l.Expired(u.now().Unix()) {
			return loan.ErrLoanExpired
		}

		inactive := false
		if err := r.Loans.Update(ctx, l.ID, loan.Patch{IsActive: &inactive}); err != nil {
			return loan.StoreFailure(err)
		}
		l.IsActive = false
		dto = toDTO(l, index)
		return nil
	})
	if err != nil {
		if !loan.IsRuleViolation(err) {
			log.Printf("ledger: error repaying loan %d for %s: %v", index, borrower, err)
		}
		return nil, txError(err)
	}

	log.Printf("ledger: loan repaid by %s: %s tokens", borrower, dto.LoanAmount)
	return dto, nil
}

// GetLoanDetails returns found=false, not an error, when index is out of range.
func (u *Usecase) GetLoanDetails(ctx context.Context, borrower string, index int) (dto *LoanDTO, found bool, err error) {
	loans, err := u.repo.Find(ctx, loan.ByBorrower(borrower))
	if err != nil {
		return nil, false, loan.StoreFailure(err)
	}
	if index < 0 || index >= len(loans) {
		return nil, false, nil
	}
	return toDTO(loans[index], index), true, nil
}

func (u *Usecase) GetActiveLoans(ctx context.Context, borrower string) ([]LoanDTO, error) {
	loans, err := u.repo.Find(ctx, loan.ByBorrower(borrower))
	if err != nil {
		return nil, loan.StoreFailure(err)
	}
	out := make([]LoanDTO, 0, len(loans))
	for i, l := range loans {
		if l.IsActive {
			out = append(out, *toDTO(l, i))
		}
	}
	return out, nil
}

// GetTotalBorrowed sums every loan the borrower ever took, repaid or not.
func (u *Usecase) GetTotalBorrowed(ctx context.Context, borrower string) (string, error) {
	loans, err := u.repo.Find(ctx, loan.ByBorrower(borrower))
	if err != nil {
		return "", loan.StoreFailure(err)
	}
	total, err := loan.Sum(loans)
	if err != nil {
		return "", err
	}
	return loan.FormatAmount(total), nil
}

// GetTotalLent sums every loan in the ledger across all borrowers.
func (u *Usecase) GetTotalLent(ctx context.Context) (string, error) {
	loans, err := u.repo.Find(ctx, loan.Filter{})
	if err != nil {
		return "", loan.StoreFailure(err)
	}
	total, err := loan.Sum(loans)
	if err != nil {
		return "", err
	}
	return loan.FormatAmount(total), nil
}
