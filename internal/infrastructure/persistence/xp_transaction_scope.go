package persistence

import (
	"context"

	appgam "github.com/wikiboard/backend/internal/application/gamification"
	"github.com/wikiboard/backend/internal/domain/gamification"
	"github.com/wikiboard/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appgam.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// UserRepo returns the user repository scoped to the current transaction.
func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// XPEventRepo returns the ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) XPEventRepo() gamification.XPEventRepository {
	return NewGormXPEventRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appgam.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appgam.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
