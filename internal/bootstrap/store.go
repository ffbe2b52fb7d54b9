package bootstrap

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"lending-ledger/internal/adapter/repository/memory"
	"lending-ledger/internal/adapter/repository/mysql"
	"lending-ledger/internal/config"
	"lending-ledger/internal/domain/loan"
	"lending-ledger/internal/domain/uow"
	"lending-ledger/internal/infrastructure/db"
	"lending-ledger/internal/usecase/ledger"
)

// Store is the persistence selected by configuration. Tx is nil for the
// in-memory store.
type Store struct {
	Loans loan.Repository
	Tx    uow.UnitOfWork
	Ping  func(ctx context.Context) error
	Close func() error
}

// Ledger builds the usecase over s, using its transactions when present.
func (s *Store) Ledger(opts ...ledger.Option) *ledger.Usecase {
	if s.Tx != nil {
		opts = append([]ledger.Option{ledger.WithUnitOfWork(s.Tx)}, opts...)
	}
	return ledger.NewUsecase(s.Loans, opts...)
}

// OpenStore opens the loan store named by cfg.StoreDriver, migrating the
// schema for SQL drivers.
func OpenStore(cfg *config.Config) (*Store, error) {
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("store: in-memory, loans are lost on restart")
		return &Store{
			Loans: memory.NewLoanRepository(),
			Ping:  func(context.Context) error { return nil },
			Close: func() error { return nil },
		}, nil
	case config.StoreSQLite:
		gdb, err = db.OpenSQLite(cfg.SQLitePath)
	case config.StoreMySQL:
		gdb, err = db.OpenGorm(cfg.MySQLDSN())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.StoreDriver, err)
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &Store{
		Loans: mysql.NewLoanRepository(gdb),
		Tx:    mysql.NewGormUoW(gdb),
		Ping:  sqlDB.PingContext,
		Close: sqlDB.Close,
	}, nil
}
