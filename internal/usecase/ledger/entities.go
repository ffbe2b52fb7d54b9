package ledger

import "lending-ledger/internal/domain/loan"

type CreateLoanInput struct {
	Borrower         string `json:"borrower"`
	CollateralAmount string `json:"collateral_amount"`
	LoanAmount       string `json:"loan_amount"`
}

// LoanDTO is a detached view of a loan. Index is the loan's position in the
// borrower's creation-ordered list, the handle used by repay and details.
type LoanDTO struct {
	ID               uint64 `json:"id"`
	Index            int    `json:"index"`
	Borrower         string `json:"borrower"`
	CollateralAmount string `json:"collateral_amount"`
	LoanAmount       string `json:"loan_amount"`
	StartTime        int64  `json:"start_time"`
	EndTime          int64  `json:"end_time"`
	IsActive         bool   `json:"is_active"`
	Status           string `json:"status"`
}

func toDTO(l loan.Loan, index int) *LoanDTO {
	return &LoanDTO{
		ID:               l.ID,
		Index:            index,
		Borrower:         l.Borrower,
		CollateralAmount: loan.FormatAmount(l.CollateralAmount),
		LoanAmount:       loan.FormatAmount(l.LoanAmount),
		StartTime:        l.StartTime,
		EndTime:          l.EndTime,
		IsActive:         l.IsActive,
		Status:           string(l.Status()),
	}
}
