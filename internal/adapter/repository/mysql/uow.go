package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lending-ledger/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

var _ uow.UnitOfWork = (*GormUoW)(nil)

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinBorrowerTx(ctx context.Context, borrower string, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the borrower's rows (and the index gap after them) up-front
		// so positions cannot shift under us. SQLite has no row locks; its
		// single writer connection serialises the transaction instead.
		q := tx.Model(&loanRow{}).Where("borrower = ?", borrower)
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var ids []uint64
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		return fn(uow.Repos{Loans: &LoanRepository{db: tx}})
	})
}
