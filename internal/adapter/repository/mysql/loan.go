package mysql

import (
	"context"
	"fmt"
	"time"

	"lending-ledger/internal/domain/loan"

	"github.com/holiman/uint256"
	"gorm.io/gorm"
)

// loanRow is the table layout. Amounts are base-10 strings of smallest
// units because 256-bit values do not fit any portable integer column.
type loanRow struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Borrower         string    `gorm:"column:borrower;size:128;not null;index:idx_loans_borrower"`
	CollateralAmount string    `gorm:"column:collateral_amount;type:varchar(78);not null"`
	LoanAmount       string    `gorm:"column:loan_amount;type:varchar(78);not null"`
	StartTime        int64     `gorm:"column:start_time;not null"`
	EndTime          int64     `gorm:"column:end_time;not null"`
	IsActive         bool      `gorm:"column:is_active;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (loanRow) TableName() string { return "loans" }

// AutoMigrate creates or updates the loans table.
func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&loanRow{}) }

type LoanRepository struct{ db *gorm.DB }

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Insert(ctx context.Context, l *loan.Loan) (uint64, error) {
	row := toRow(l)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *LoanRepository) Find(ctx context.Context, f loan.Filter) ([]loan.Loan, error) {
	q := r.db.WithContext(ctx).Model(&loanRow{}).Order("id ASC")
	if f.Borrower != nil {
		q = q.Where("borrower = ?", *f.Borrower)
	}
	var rows []loanRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]loan.Loan, 0, len(rows))
	for _, row := range rows {
		l, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *LoanRepository) Update(ctx context.Context, id uint64, p loan.Patch) error {
	updates := map[string]any{}
	if p.IsActive != nil {
		updates["is_active"] = *p.IsActive
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&loanRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func toRow(l *loan.Loan) loanRow {
	return loanRow{
		ID:               l.ID,
		Borrower:         l.Borrower,
		CollateralAmount: units(l.CollateralAmount),
		LoanAmount:       units(l.LoanAmount),
		StartTime:        l.StartTime,
		EndTime:          l.EndTime,
		IsActive:         l.IsActive,
	}
}

func fromRow(row loanRow) (loan.Loan, error) {
	collateral, err := uint256.FromDecimal(row.CollateralAmount)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("loan %d: collateral_amount %q: %w", row.ID, row.CollateralAmount, err)
	}
	amount, err := uint256.FromDecimal(row.LoanAmount)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("loan %d: loan_amount %q: %w", row.ID, row.LoanAmount, err)
	}
	return loan.Loan{
		ID:               row.ID,
		Borrower:         row.Borrower,
		CollateralAmount: collateral,
		LoanAmount:       amount,
		StartTime:        row.StartTime,
		EndTime:          row.EndTime,
		IsActive:         row.IsActive,
	}, nil
}

func units(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
