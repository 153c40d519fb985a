package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerKind string
type LedgerStatus string

const (
	KindInvestment LedgerKind = "investment"

	LedgerCompleted LedgerStatus = "completed"
)

// LedgerTransaction is an append-only record of a balance-affecting event.
type LedgerTransaction struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Kind           LedgerKind      `json:"kind"`
	Subkind        Category        `json:"subkind"`
	SignedAmount   decimal.Decimal `json:"signed_amount"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	Status         LedgerStatus    `json:"status"`
	Description    string          `json:"description"`
	LedgerCategory string          `json:"ledger_category"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewInvestmentDebit records the outgoing side of a placed investment.
// SignedAmount is negative and BalanceAfter reflects the balance the account
// holds once the debit lands.
func NewInvestmentDebit(accountID string, category Category, amount, balanceBefore decimal.Decimal) *LedgerTransaction {
	return &LedgerTransaction{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		Kind:           KindInvestment,
		Subkind:        category,
		SignedAmount:   amount.Neg(),
		BalanceAfter:   balanceBefore.Sub(amount),
		Status:         LedgerCompleted,
		Description:    fmt.Sprintf("Investment in %s", category.Label()),
		LedgerCategory: string(KindInvestment),
	}
}
