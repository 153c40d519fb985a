package repository

import (
	"context"
	"errors"

	"investment_manager/internal/domain"
)

type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error)
}

type InvestmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Investment, error)
	// GetByOwner returns investments for the owner, newest first, at most limit.
	GetByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Investment, error)
	GetByStatus(ctx context.Context, ownerID string, status domain.InvestmentStatus) ([]*domain.Investment, error)
}

type LedgerRepository interface {
	// GetByAccount returns ledger transactions for the account, newest first.
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerTransaction, error)
}

// AtomicTx is the view of the store inside one atomic unit. Reads observe
// committed state plus this unit's own staged writes; nothing becomes visible
// to other callers until the unit commits.
type AtomicTx interface {
	Account(id string) (*domain.Account, error)
	UpdateAccount(account *domain.Account) error
	CreateInvestment(inv *domain.Investment) error
	CreateLedgerTransaction(lt *domain.LedgerTransaction) error
}

// AtomicStore executes fn as a single all-or-nothing unit. A non-nil error
// from fn aborts the unit with no partial effect. Units touching the same
// account are linearized by the store; timestamps on created and updated
// records are assigned by the store at commit, never by the caller.
type AtomicStore interface {
	RunAtomic(ctx context.Context, fn func(tx AtomicTx) error) error
}

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("duplicate entry")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountSuspended    = errors.New("account suspended")
	ErrTransactionConflict = errors.New("transaction conflict")
)
