package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"investment_manager/internal/domain"
	"investment_manager/internal/repository"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	const query = `INSERT INTO accounts (id, user_id, balance, total_invested, currency, status, created_at, last_activity_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())`

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.UserID, account.Balance, account.TotalInvested, account.Currency, account.Status)
	return mapError(err)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT id, user_id, balance, total_invested, currency, status, created_at, last_activity_at
	FROM accounts WHERE id = $1`

	var account domain.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.UserID,
		&account.Balance,
		&account.TotalInvested,
		&account.Currency,
		&account.Status,
		&account.CreatedAt,
		&account.LastActivityAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error) {
	const query = `SELECT id, user_id, balance, total_invested, currency, status, created_at, last_activity_at
	FROM accounts WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Balance,
			&account.TotalInvested,
			&account.Currency,
			&account.Status,
			&account.CreatedAt,
			&account.LastActivityAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
	}
	return result, nil
}

type InvestmentRepository struct {
	db *sql.DB
}

func NewInvestmentRepository(db *sql.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	const query = `SELECT id, owner_id, category, amount, status, return_rate, expected_return, created_at, updated_at
	FROM investments WHERE id = $1`

	var inv domain.Investment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.OwnerID,
		&inv.Category,
		&inv.Amount,
		&inv.Status,
		&inv.ReturnRate,
		&inv.ExpectedReturn,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: investment %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestmentRepository) GetByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Investment, error) {
	const query = `SELECT id, owner_id, category, amount, status, return_rate, expected_return, created_at, updated_at
	FROM investments WHERE owner_id = $1 ORDER BY created_at DESC, id LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInvestments(rows)
}

func (r *InvestmentRepository) GetByStatus(ctx context.Context, ownerID string, status domain.InvestmentStatus) ([]*domain.Investment, error) {
	const query = `SELECT id, owner_id, category, amount, status, return_rate, expected_return, created_at, updated_at
	FROM investments WHERE owner_id = $1 AND status = $2 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInvestments(rows)
}

func scanInvestments(rows *sql.Rows) ([]*domain.Investment, error) {
	var result []*domain.Investment
	for rows.Next() {
		var inv domain.Investment
		if err := rows.Scan(
			&inv.ID,
			&inv.OwnerID,
			&inv.Category,
			&inv.Amount,
			&inv.Status,
			&inv.ReturnRate,
			&inv.ExpectedReturn,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerTransaction, error) {
	const query = `SELECT id, account_id, kind, subkind, signed_amount, balance_after, status, description, ledger_category, created_at
	FROM ledger_transactions WHERE account_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LedgerTransaction
	for rows.Next() {
		var lt domain.LedgerTransaction
		if err := rows.Scan(
			&lt.ID,
			&lt.AccountID,
			&lt.Kind,
			&lt.Subkind,
			&lt.SignedAmount,
			&lt.BalanceAfter,
			&lt.Status,
			&lt.Description,
			&lt.LedgerCategory,
			&lt.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &lt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var (
	_ repository.AccountRepository    = (*AccountRepository)(nil)
	_ repository.InvestmentRepository = (*InvestmentRepository)(nil)
	_ repository.LedgerRepository     = (*LedgerRepository)(nil)
)
