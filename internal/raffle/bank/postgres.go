package bank

import (
	"context"
	"database/sql"
	"fmt"

	"raffle/pkg/platform/sentinel"
	txcontext "raffle/pkg/platform/tx"
)

// Postgres persists account balances in an accounts table. Transfer runs as
// a single SQL transaction so the debit and credit commit together.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema returns the DDL for the accounts table. Applied by the operator or
// the integration test harness, not at runtime.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS accounts (
    account    TEXT PRIMARY KEY,
    balance    NUMERIC(20, 0) NOT NULL DEFAULT 0 CHECK (balance >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return p.db
}

func (p *Postgres) Deposit(ctx context.Context, account string, amount uint64) error {
	_, err := p.execer(ctx).ExecContext(ctx, `
		INSERT INTO accounts (account, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account)
		DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = now()`,
		account, amount)
	if err != nil {
		return fmt.Errorf("deposit into %s: %w", account, err)
	}
	return nil
}

func (p *Postgres) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if tx, ok := txcontext.From(ctx); ok {
		return p.transferIn(ctx, tx, from, to, amount)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	if err := p.transferIn(ctx, tx, from, to, amount); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

func (p *Postgres) transferIn(ctx context.Context, tx *sql.Tx, from, to string, amount uint64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - $2, updated_at = now()
		WHERE account = $1 AND balance >= $2`,
		from, amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s cannot cover %d: %w", from, amount, sentinel.ErrInsufficientFunds)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (account, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account)
		DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = now()`,
		to, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	return nil
}

func (p *Postgres) Balance(ctx context.Context, account string) (uint64, error) {
	var balance uint64
	err := p.execer(ctx).QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE account = $1`, account).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", account, err)
	}
	return balance, nil
}
