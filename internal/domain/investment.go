package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvestmentStatus string

const (
	InvestmentActive InvestmentStatus = "active"
)

type Investment struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"owner_id"`
	Category       Category         `json:"category"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         InvestmentStatus `json:"status"`
	ReturnRate     decimal.Decimal  `json:"return_rate"`
	ExpectedReturn decimal.Decimal  `json:"expected_return"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewInvestment builds an active investment for the given owner. Timestamps
// are left zero; the store assigns them at commit.
func NewInvestment(ownerID string, category Category, amount, rate decimal.Decimal) *Investment {
	return &Investment{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Category:       category,
		Amount:         amount,
		Status:         InvestmentActive,
		ReturnRate:     rate,
		ExpectedReturn: amount.Mul(rate),
	}
}
