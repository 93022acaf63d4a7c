package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/domain"
)

// Repository is the persistence boundary for accounts and ledger facts.
// No business rule lives behind it: balance invariants are enforced by the
// transfer engine, ownership by the authorization guard.
type Repository interface {
	CreateAccount(ctx context.Context, acct *domain.Account) (*domain.Account, error)
	AccountByID(ctx context.Context, number int64) (*domain.Account, error)
	AccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SaveAccount(ctx context.Context, acct *domain.Account) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// TransactionsFor returns every fact in which the account appears as
	// sender or recipient, in no particular order.
	TransactionsFor(ctx context.Context, number int64) ([]domain.Transaction, error)

	// InTx runs fn inside one transactional scope. If fn returns an error
	// no effect of it remains observable.
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of operations available inside a transactional scope.
// AccountForUpdate takes a row lock, so concurrent movements touching the
// same account serialize; callers lock accounts in ascending number order
// to stay deadlock-free.
type Tx interface {
	AccountForUpdate(ctx context.Context, number int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, number int64, balance decimal.Decimal) error
	AppendTransaction(ctx context.Context, fact *domain.Transaction) (*domain.Transaction, error)
	ReassignTransactions(ctx context.Context, from, to int64) error
	DeleteAccount(ctx context.Context, number int64) error
}
