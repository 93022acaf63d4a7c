package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/domain"
)

const accountColumns = "number, name, email, password_hash, balance::text, roles, created_at"

// Postgres implements Repository on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(connString string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var acct domain.Account
	var balance string
	err := row.Scan(&acct.Number, &acct.Name, &acct.Email, &acct.PasswordHash, &balance, &acct.Roles, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	acct.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for account %d: %w", acct.Number, err)
	}
	return &acct, nil
}

func (s *Postgres) CreateAccount(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (name, email, password_hash, balance, roles)
		 VALUES ($1, $2, $3, $4::numeric, $5)
		 RETURNING `+accountColumns,
		acct.Name, acct.Email, acct.PasswordHash, acct.Balance.String(), acct.Roles)

	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("account insert failed: %w", err)
	}
	return created, nil
}

func (s *Postgres) AccountByID(ctx context.Context, number int64) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE number = $1", number)
	return scanAccount(row)
}

func (s *Postgres) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = $1", email)
	return scanAccount(row)
}

func (s *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

func (s *Postgres) SaveAccount(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE accounts
		 SET name = $2, email = $3, password_hash = $4, balance = $5::numeric, roles = $6
		 WHERE number = $1
		 RETURNING `+accountColumns,
		acct.Number, acct.Name, acct.Email, acct.PasswordHash, acct.Balance.String(), acct.Roles)

	saved, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return saved, nil
}

func (s *Postgres) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

func (s *Postgres) TransactionsFor(ctx context.Context, number int64) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, sender_number, recipient_number, amount::text, created_at
		 FROM transactions
		 WHERE sender_number = $1 OR recipient_number = $1`,
		number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []domain.Transaction
	for rows.Next() {
		var fact domain.Transaction
		var amount string
		if err := rows.Scan(&fact.ID, &fact.Kind, &fact.Sender, &fact.Recipient, &amount, &fact.CreatedAt); err != nil {
			return nil, err
		}
		if fact.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for transaction %d: %w", fact.ID, err)
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// InTx runs fn inside a single database transaction with repeatable-read
// isolation. Row locks taken by fn via AccountForUpdate hold until commit.
func (s *Postgres) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx commit failed: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) AccountForUpdate(ctx context.Context, number int64) (*domain.Account, error) {
	row := t.tx.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE number = $1 FOR UPDATE", number)
	return scanAccount(row)
}

func (t *pgTx) UpdateBalance(ctx context.Context, number int64, balance decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx, "UPDATE accounts SET balance = $1::numeric WHERE number = $2", balance.String(), number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (t *pgTx) AppendTransaction(ctx context.Context, fact *domain.Transaction) (*domain.Transaction, error) {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO transactions (kind, sender_number, recipient_number, amount, created_at)
		 VALUES ($1, $2, $3, $4::numeric, $5)
		 RETURNING id`,
		fact.Kind, fact.Sender, fact.Recipient, fact.Amount.String(), fact.CreatedAt,
	).Scan(&fact.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger append failed: %w", err)
	}
	return fact, nil
}

func (t *pgTx) ReassignTransactions(ctx context.Context, from, to int64) error {
	if _, err := t.tx.Exec(ctx, "UPDATE transactions SET sender_number = $2 WHERE sender_number = $1", from, to); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, "UPDATE transactions SET recipient_number = $2 WHERE recipient_number = $1", from, to)
	return err
}

func (t *pgTx) DeleteAccount(ctx context.Context, number int64) error {
	tag, err := t.tx.Exec(ctx, "DELETE FROM accounts WHERE number = $1", number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
