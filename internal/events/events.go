package events

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const TopicInvestmentPlaced = "investment.placed"

// InvestmentPlaced is emitted after an investment unit commits.
type InvestmentPlaced struct {
	InvestmentID   string          `json:"investment_id"`
	AccountID      string          `json:"account_id"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	ReturnRate     decimal.Decimal `json:"return_rate"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(topic string, event any) error
}

// LogPublisher writes events to the log only. Used when no broker is
// configured and in tests.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Publish(topic string, event any) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Event published",
		slog.String("topic", topic),
		slog.Any("event", event))
	return nil
}
