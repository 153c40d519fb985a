package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"investment_manager/internal/domain"
	"investment_manager/internal/repository"
)

// Store keeps accounts, investments and the ledger behind a single lock so
// that RunAtomic can commit writes across all three as one unit.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*domain.Account
	investments map[string]*domain.Investment
	ledger      []*domain.LedgerTransaction
	userIndex   map[string][]string
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*domain.Account),
		investments: make(map[string]*domain.Investment),
		userIndex:   make(map[string][]string),
		now:         time.Now,
	}
}

// RunAtomic serializes units on the store lock. fn works against a staged
// view; staged writes are applied only when fn returns nil, with commit-time
// timestamps assigned here.
func (s *Store) RunAtomic(ctx context.Context, fn func(tx repository.AtomicTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		store:   s,
		reads:   make(map[string]*domain.Account),
		updates: make(map[string]*domain.Account),
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	for id, account := range tx.updates {
		account.LastActivityAt = now
		s.accounts[id] = account
	}
	for _, inv := range tx.investments {
		inv.CreatedAt = now
		inv.UpdatedAt = now
		s.investments[inv.ID] = inv
	}
	for _, lt := range tx.ledger {
		lt.CreatedAt = now
		s.ledger = append(s.ledger, lt)
	}

	return nil
}

type memTx struct {
	store       *Store
	reads       map[string]*domain.Account
	updates     map[string]*domain.Account
	investments []*domain.Investment
	ledger      []*domain.LedgerTransaction
}

func (t *memTx) Account(id string) (*domain.Account, error) {
	if account, ok := t.updates[id]; ok {
		return account, nil
	}
	if account, ok := t.reads[id]; ok {
		return account, nil
	}

	account, ok := t.store.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}

	clone := account.Clone()
	t.reads[id] = clone
	return clone, nil
}

func (t *memTx) UpdateAccount(account *domain.Account) error {
	if _, ok := t.store.accounts[account.ID]; !ok {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, account.ID)
	}
	t.updates[account.ID] = account
	return nil
}

func (t *memTx) CreateInvestment(inv *domain.Investment) error {
	if _, ok := t.store.investments[inv.ID]; ok {
		return fmt.Errorf("%w: investment %s", repository.ErrDuplicate, inv.ID)
	}
	t.investments = append(t.investments, inv)
	return nil
}

func (t *memTx) CreateLedgerTransaction(lt *domain.LedgerTransaction) error {
	for _, staged := range t.ledger {
		if staged.ID == lt.ID {
			return fmt.Errorf("%w: ledger transaction %s", repository.ErrDuplicate, lt.ID)
		}
	}
	t.ledger = append(t.ledger, lt)
	return nil
}
