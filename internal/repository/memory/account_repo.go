package memory

import (
	"context"
	"fmt"

	"investment_manager/internal/domain"
	"investment_manager/internal/repository"
)

// AccountRepository reads and writes accounts on a shared Store.
type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("%w: account %s", repository.ErrDuplicate, account.ID)
	}

	now := s.now()
	account.CreatedAt = now
	account.LastActivityAt = now
	s.accounts[account.ID] = account.Clone()

	s.userIndex[account.UserID] = append(s.userIndex[account.UserID], account.ID)

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return account.Clone(), nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountIDs, exists := s.userIndex[userID]
	if !exists {
		return nil, fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
	}

	var result []*domain.Account
	for _, id := range accountIDs {
		if account, exists := s.accounts[id]; exists {
			result = append(result, account.Clone())
		}
	}

	return result, nil
}
