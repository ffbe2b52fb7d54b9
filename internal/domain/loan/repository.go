package loan

import "context"

// Filter narrows Find. A nil Borrower matches every loan.
type Filter struct {
	Borrower *string
}

func ByBorrower(borrower string) Filter { return Filter{Borrower: &borrower} }

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	IsActive *bool
}

type Repository interface {
	// Insert persists l and returns the id assigned by the store.
	Insert(ctx context.Context, l *Loan) (uint64, error)
	// Find returns matching loans in creation order.
	Find(ctx context.Context, f Filter) ([]Loan, error)
	Update(ctx context.Context, id uint64, p Patch) error
}
