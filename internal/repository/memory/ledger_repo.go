package memory

import (
	"context"

	"investment_manager/internal/domain"
)

// LedgerRepository reads the append-only ledger on a shared Store.
type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerTransaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The ledger slice is in commit order; walk it backwards for newest first.
	var result []*domain.LedgerTransaction
	skipped := 0
	for i := len(s.ledger) - 1; i >= 0; i-- {
		lt := s.ledger[i]
		if lt.AccountID != accountID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		copied := *lt
		result = append(result, &copied)
		if limit > 0 && len(result) == limit {
			break
		}
	}

	return result, nil
}
