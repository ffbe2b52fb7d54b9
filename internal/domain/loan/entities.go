package loan

import (
	"time"

	"github.com/holiman/uint256"
)

type Status string

const (
	StatusActive Status = "active"
	StatusRepaid Status = "repaid"
)

// Lending rules. CollateralRatio is a percentage of the loan amount.
const (
	CollateralRatio = 120
	Duration        = 30 * 24 * time.Hour
	DurationSeconds = int64(Duration / time.Second) // 2_592_000
)

var (
	MinCollateral = MustUnits("100")
	MaxLoan       = MustUnits("10000")
)

// Loan is a single collateralized loan. Amounts are in smallest units
// (18 decimals). EndTime is fixed at creation and never recomputed.
type Loan struct {
	ID               uint64
	Borrower         string
	CollateralAmount *uint256.Int
	LoanAmount       *uint256.Int
	StartTime        int64
	EndTime          int64
	IsActive         bool
}

func (l Loan) Status() Status {
	if l.IsActive {
		return StatusActive
	}
	return StatusRepaid
}

// Expired reports whether repayment is no longer allowed at now (unix seconds).
func (l Loan) Expired(now int64) bool { return now > l.EndTime }

// Clone returns a copy that shares no amount storage with l.
func (l Loan) Clone() Loan {
	out := l
	if l.CollateralAmount != nil {
		out.CollateralAmount = new(uint256.Int).Set(l.CollateralAmount)
	}
	if l.LoanAmount != nil {
		out.LoanAmount = new(uint256.Int).Set(l.LoanAmount)
	}
	return out
}
