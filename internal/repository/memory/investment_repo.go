package memory

import (
	"context"
	"fmt"
	"sort"

	"investment_manager/internal/domain"
	"investment_manager/internal/repository"
)

// InvestmentRepository reads investments committed on a shared Store.
// Writes happen only through Store.RunAtomic.
type InvestmentRepository struct {
	store *Store
}

func NewInvestmentRepository(store *Store) *InvestmentRepository {
	return &InvestmentRepository{store: store}
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.investments[id]
	if !exists {
		return nil, fmt.Errorf("%w: investment %s", repository.ErrNotFound, id)
	}
	copied := *inv
	return &copied, nil
}

func (r *InvestmentRepository) GetByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Investment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Investment
	for _, inv := range s.investments {
		if inv.OwnerID == ownerID {
			copied := *inv
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (r *InvestmentRepository) GetByStatus(ctx context.Context, ownerID string, status domain.InvestmentStatus) ([]*domain.Investment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Investment
	for _, inv := range s.investments {
		if inv.OwnerID == ownerID && inv.Status == status {
			copied := *inv
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
