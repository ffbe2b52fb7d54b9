package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lending-ledger/internal/domain/loan"
)

// LoanRepository keeps loans in a slice ordered by id. Reads hand out
// copies so callers can never mutate stored records.
type LoanRepository struct {
	mu     sync.RWMutex
	loans  []loan.Loan
	nextID uint64
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository() *LoanRepository { return &LoanRepository{} }

func (r *LoanRepository) Insert(ctx context.Context, l *loan.Loan) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	row := l.Clone()
	row.ID = r.nextID
	r.loans = append(r.loans, row)
	return row.ID, nil
}

func (r *LoanRepository) Find(ctx context.Context, f loan.Filter) ([]loan.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]loan.Loan, 0, len(r.loans))
	for _, l := range r.loans {
		if f.Borrower != nil && l.Borrower != *f.Borrower {
			continue
		}
		out = append(out, l.Clone())
	}
	return out, nil
}

func (r *LoanRepository) Update(ctx context.Context, id uint64, p loan.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := sort.Search(len(r.loans), func(i int) bool { return r.loans[i].ID >= id })
	if i == len(r.loans) || r.loans[i].ID != id {
		return fmt.Errorf("memory: loan %d does not exist", id)
	}
	if p.IsActive != nil {
		r.loans[i].IsActive = *p.IsActive
	}
	return nil
}
