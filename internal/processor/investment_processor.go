package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"investment_manager/internal/domain"
	"investment_manager/internal/events"
	"investment_manager/internal/repository"
	"investment_manager/pkg/validator"
)

// InvestmentProcessor owns the invest business rule: validate funds, debit
// the balance and create the investment plus its ledger record as one atomic
// unit against the store.
type InvestmentProcessor struct {
	store          repository.AtomicStore
	accountRepo    repository.AccountRepository
	investmentRepo repository.InvestmentRepository
	ledgerRepo     repository.LedgerRepository
	ratePolicy     *RatePolicy
	dispatcher     *events.Dispatcher
	logger         *slog.Logger
}

func NewInvestmentProcessor(
	store repository.AtomicStore,
	accountRepo repository.AccountRepository,
	investmentRepo repository.InvestmentRepository,
	ledgerRepo repository.LedgerRepository,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
) *InvestmentProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	return &InvestmentProcessor{
		store:          store,
		accountRepo:    accountRepo,
		investmentRepo: investmentRepo,
		ledgerRepo:     ledgerRepo,
		ratePolicy:     NewRatePolicy(),
		dispatcher:     dispatcher,
		logger:         logger,
	}
}

// Invest places an investment for the account. The balance check, the debit
// and both record creations execute inside one atomic store unit; on any
// failure nothing is written. Conflict signals from the store surface as
// repository.ErrTransactionConflict and are not retried here.
func (p *InvestmentProcessor) Invest(ctx context.Context, accountID string, category domain.Category, amount decimal.Decimal) (*domain.Investment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, validator.ErrNotPositive
	}

	var (
		created      *domain.Investment
		balanceAfter decimal.Decimal
	)

	err := p.store.RunAtomic(ctx, func(tx repository.AtomicTx) error {
		account, err := tx.Account(accountID)
		if err != nil {
			return err
		}

		if account.Status != domain.AccountActive {
			return fmt.Errorf("%w: account %s", repository.ErrAccountSuspended, accountID)
		}

		if account.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, requested %s",
				repository.ErrInsufficientBalance, account.Balance, amount)
		}

		rate := p.ratePolicy.RateFor(category)
		balanceBefore := account.Balance

		account.Balance = account.Balance.Sub(amount)
		account.TotalInvested = account.TotalInvested.Add(amount)
		if err := tx.UpdateAccount(account); err != nil {
			return err
		}

		inv := domain.NewInvestment(accountID, category, amount, rate)
		if err := tx.CreateInvestment(inv); err != nil {
			return err
		}

		lt := domain.NewInvestmentDebit(accountID, category, amount, balanceBefore)
		if err := tx.CreateLedgerTransaction(lt); err != nil {
			return err
		}

		created = inv
		balanceAfter = lt.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Investment placed",
		slog.String("investment_id", created.ID),
		slog.String("account_id", accountID),
		slog.String("category", string(category)),
		slog.String("amount", amount.String()))

	p.publishPlaced(ctx, created, balanceAfter)

	return created, nil
}

func (p *InvestmentProcessor) publishPlaced(ctx context.Context, inv *domain.Investment, balanceAfter decimal.Decimal) {
	if p.dispatcher == nil {
		return
	}

	event := events.InvestmentPlaced{
		InvestmentID:   inv.ID,
		AccountID:      inv.OwnerID,
		Category:       string(inv.Category),
		Amount:         inv.Amount,
		ReturnRate:     inv.ReturnRate,
		ExpectedReturn: inv.ExpectedReturn,
		BalanceAfter:   balanceAfter,
		OccurredAt:     time.Now().UTC(),
	}

	if err := p.dispatcher.Dispatch(ctx, events.TopicInvestmentPlaced, event); err != nil {
		p.logger.ErrorContext(ctx, "Failed to queue investment event",
			slog.String("investment_id", inv.ID),
			slog.String("error", err.Error()))
	}
}

func (p *InvestmentProcessor) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return p.accountRepo.GetByID(ctx, accountID)
}

func (p *InvestmentProcessor) GetInvestment(ctx context.Context, investmentID string) (*domain.Investment, error) {
	return p.investmentRepo.GetByID(ctx, investmentID)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// RecentInvestments returns the owner's investments newest first.
func (p *InvestmentProcessor) RecentInvestments(ctx context.Context, ownerID string, limit int) ([]*domain.Investment, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return p.investmentRepo.GetByOwner(ctx, ownerID, limit)
}

// LedgerHistory returns the account's ledger transactions newest first.
func (p *InvestmentProcessor) LedgerHistory(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return p.ledgerRepo.GetByAccount(ctx, accountID, limit, offset)
}

type PortfolioSummary struct {
	AccountID         string          `json:"account_id"`
	Currency          string          `json:"currency"`
	Balance           decimal.Decimal `json:"balance"`
	TotalInvested     decimal.Decimal `json:"total_invested"`
	ActiveInvestments int             `json:"active_investments"`
	ExpectedReturn    decimal.Decimal `json:"expected_return"`
}

// PortfolioSummary aggregates the stats the portfolio screen shows: cash
// balance, cumulative invested amount, active position count and the sum of
// expected returns.
func (p *InvestmentProcessor) PortfolioSummary(ctx context.Context, accountID string) (*PortfolioSummary, error) {
	account, err := p.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	active, err := p.investmentRepo.GetByStatus(ctx, accountID, domain.InvestmentActive)
	if err != nil {
		return nil, err
	}

	expected := decimal.Zero
	for _, inv := range active {
		expected = expected.Add(inv.ExpectedReturn)
	}

	return &PortfolioSummary{
		AccountID:         account.ID,
		Currency:          account.Currency,
		Balance:           account.Balance,
		TotalInvested:     account.TotalInvested,
		ActiveInvestments: len(active),
		ExpectedReturn:    expected,
	}, nil
}
