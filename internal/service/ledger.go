package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/domain"
	"github.com/psalmeida/bancodigital/internal/store"
)

// Ledger owns the append-only transaction record and its caller-facing
// projection. Facts are timestamped at append time and never mutated
// afterwards; the sink reassignment on account deletion is the single
// exception, and it rewrites references, not history.
type Ledger struct {
	repo store.Repository
	now  func() time.Time
}

func NewLedger(repo store.Repository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// AppendDeposit records a deposit fact inside the given scope. Sender is
// nil: money entered the system from outside.
func (l *Ledger) AppendDeposit(ctx context.Context, tx store.Tx, recipient int64, amount decimal.Decimal) (*domain.Transaction, error) {
	return tx.AppendTransaction(ctx, &domain.Transaction{
		Kind:      domain.KindDeposit,
		Recipient: &recipient,
		Amount:    amount,
		CreatedAt: l.now(),
	})
}

// AppendWithdrawal records a withdrawal fact. Recipient is nil: money left
// the system.
func (l *Ledger) AppendWithdrawal(ctx context.Context, tx store.Tx, sender int64, amount decimal.Decimal) (*domain.Transaction, error) {
	return tx.AppendTransaction(ctx, &domain.Transaction{
		Kind:      domain.KindWithdrawal,
		Sender:    &sender,
		Amount:    amount,
		CreatedAt: l.now(),
	})
}

// AppendTransfer records a movement between two accounts.
func (l *Ledger) AppendTransfer(ctx context.Context, tx store.Tx, sender, recipient int64, amount decimal.Decimal) (*domain.Transaction, error) {
	return tx.AppendTransaction(ctx, &domain.Transaction{
		Kind:      domain.KindTransfer,
		Sender:    &sender,
		Recipient: &recipient,
		Amount:    amount,
		CreatedAt: l.now(),
	})
}

// StatementFor projects every movement involving the account, most recent
// first. Repeated calls with no intervening mutation return an identical
// sequence; an account with no history gets an empty one.
func (l *Ledger) StatementFor(ctx context.Context, number int64) ([]domain.TransactionView, error) {
	if _, err := l.repo.AccountByID(ctx, number); err != nil {
		return nil, err
	}

	facts, err := l.repo.TransactionsFor(ctx, number)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].CreatedAt.After(facts[j].CreatedAt)
	})

	names := make(map[int64]string)
	views := make([]domain.TransactionView, 0, len(facts))
	for _, fact := range facts {
		views = append(views, domain.TransactionView{
			Kind:      fact.Kind,
			Sender:    l.partyFor(ctx, names, fact.Sender),
			Recipient: l.partyFor(ctx, names, fact.Recipient),
			Amount:    fact.Amount,
			CreatedAt: fact.CreatedAt,
		})
	}
	return views, nil
}

// partyFor resolves an account reference to its display summary, caching
// lookups across one statement. References always point at a live account
// because deletion reassigns facts to the sink before removing the row; if
// one ever dangles, the number alone is reported.
func (l *Ledger) partyFor(ctx context.Context, names map[int64]string, number *int64) *domain.Party {
	if number == nil {
		return nil
	}
	name, ok := names[*number]
	if !ok {
		if acct, err := l.repo.AccountByID(ctx, *number); err == nil {
			name = acct.Name
		}
		names[*number] = name
	}
	return &domain.Party{Number: *number, Name: name}
}
