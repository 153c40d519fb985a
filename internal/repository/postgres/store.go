package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"investment_manager/internal/domain"
	"investment_manager/internal/repository"
)

// Store implements the atomic investment unit on top of a Postgres database.
// Account rows are locked FOR UPDATE inside a serializable transaction, so
// concurrent units on the same account are linearized by the database.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RunAtomic(ctx context.Context, fn func(tx repository.AtomicTx) error) error {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	tx := &pgTx{ctx: ctx, tx: dbTx}

	if err := fn(tx); err != nil {
		dbTx.Rollback()
		return err
	}

	if err := dbTx.Commit(); err != nil {
		dbTx.Rollback()
		return mapError(err)
	}
	return nil
}

type pgTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *pgTx) Account(id string) (*domain.Account, error) {
	const query = `SELECT id, user_id, balance, total_invested, currency, status, created_at, last_activity_at
	FROM accounts WHERE id = $1 FOR UPDATE`

	var account domain.Account
	err := t.tx.QueryRowContext(t.ctx, query, id).Scan(
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
		return nil, mapError(err)
	}
	return &account, nil
}

func (t *pgTx) UpdateAccount(account *domain.Account) error {
	const query = `UPDATE accounts
	SET balance = $2, total_invested = $3, status = $4, last_activity_at = now()
	WHERE id = $1`

	res, err := t.tx.ExecContext(t.ctx, query, account.ID, account.Balance, account.TotalInvested, account.Status)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, account.ID)
	}
	return nil
}

func (t *pgTx) CreateInvestment(inv *domain.Investment) error {
	const query = `INSERT INTO investments (id, owner_id, category, amount, status, return_rate, expected_return, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err := t.tx.ExecContext(t.ctx, query,
		inv.ID, inv.OwnerID, inv.Category, inv.Amount, inv.Status, inv.ReturnRate, inv.ExpectedReturn)
	return mapError(err)
}

func (t *pgTx) CreateLedgerTransaction(lt *domain.LedgerTransaction) error {
	const query = `INSERT INTO ledger_transactions (id, account_id, kind, subkind, signed_amount, balance_after, status, description, ledger_category, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`

	_, err := t.tx.ExecContext(t.ctx, query,
		lt.ID, lt.AccountID, lt.Kind, lt.Subkind, lt.SignedAmount, lt.BalanceAfter, lt.Status, lt.Description, lt.LedgerCategory)
	return mapError(err)
}

// mapError folds Postgres contention and duplicate signals into the
// repository sentinels; everything else passes through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", repository.ErrTransactionConflict, pqErr.Message)
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Message)
		}
	}
	return err
}

var _ repository.AtomicStore = (*Store)(nil)
