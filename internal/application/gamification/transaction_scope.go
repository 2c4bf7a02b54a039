package gamification

import (
	"context"

	"github.com/wikiboard/backend/internal/domain/gamification"
	"github.com/wikiboard/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the repositories an XP
// adjustment touches. When a function is executed within a transaction scope,
// all repository operations will be part of the same database transaction and
// will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the gamification repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// An XP adjustment spans two aggregates on purpose: the ledger entry is the
// source of record for the delta, while the user row carries the derived
// running total and level. Both writes must land together or not at all.
type TransactionalRepositories interface {
	// UserRepo returns the user repository scoped to the current transaction
	UserRepo() identity.UserRepository

	// XPEventRepo returns the ledger repository scoped to the current transaction
	XPEventRepo() gamification.XPEventRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	userRepo    identity.UserRepository
	xpEventRepo gamification.XPEventRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	userRepo identity.UserRepository,
	xpEventRepo gamification.XPEventRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		userRepo:    userRepo,
		xpEventRepo: xpEventRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// UserRepo returns the user repository.
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
}

// XPEventRepo returns the ledger repository.
func (s *NoOpTransactionScope) XPEventRepo() gamification.XPEventRepository {
	return s.xpEventRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
