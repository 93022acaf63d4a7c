package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/psalmeida/bancodigital/internal/domain"
)

// tickingClock hands out strictly increasing instants.
func tickingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestStatementForOrdering(t *testing.T) {
	repo, ledger, engine := testRig(t)
	ctx := context.Background()
	ledger.now = tickingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	a := seedAccount(t, repo, "Alice", "alice@bank.io", 0)
	b := seedAccount(t, repo, "Bob", "bob@bank.io", 0)

	if _, err := engine.Deposit(ctx, a.Number, dec(100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := engine.Withdraw(ctx, a.Number, dec(20)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := engine.Transfer(ctx, a.Number, b.Number, dec(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := engine.Deposit(ctx, b.Number, dec(5)); err != nil {
		t.Fatalf("second deposit: %v", err)
	}

	views, err := ledger.StatementFor(ctx, a.Number)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}

	wantKinds := []string{domain.KindTransfer, domain.KindWithdrawal, domain.KindDeposit}
	if len(views) != len(wantKinds) {
		t.Fatalf("statement has %d entries, want %d", len(views), len(wantKinds))
	}
	for i, v := range views {
		if v.Kind != wantKinds[i] {
			t.Errorf("entry %d kind = %q, want %q", i, v.Kind, wantKinds[i])
		}
		if i > 0 && views[i-1].CreatedAt.Before(v.CreatedAt) {
			t.Errorf("entries %d and %d out of order", i-1, i)
		}
	}

	// Counterparty summaries resolve to display data, not raw records.
	transfer := views[0]
	if transfer.Sender == nil || transfer.Sender.Name != "Alice" {
		t.Errorf("transfer sender = %+v", transfer.Sender)
	}
	if transfer.Recipient == nil || transfer.Recipient.Name != "Bob" {
		t.Errorf("transfer recipient = %+v", transfer.Recipient)
	}
}

func TestStatementForIsIdempotent(t *testing.T) {
	repo, ledger, engine := testRig(t)
	ctx := context.Background()
	ledger.now = tickingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	a := seedAccount(t, repo, "Alice", "alice@bank.io", 0)
	if _, err := engine.Deposit(ctx, a.Number, dec(10)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	first, err := ledger.StatementFor(ctx, a.Number)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	second, err := ledger.StatementFor(ctx, a.Number)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("repeated calls disagree: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].CreatedAt.Equal(second[i].CreatedAt) || first[i].Kind != second[i].Kind {
			t.Errorf("entry %d differs between calls", i)
		}
	}
}

func TestStatementForEmptyHistory(t *testing.T) {
	repo, ledger, _ := testRig(t)
	a := seedAccount(t, repo, "Alice", "alice@bank.io", 0)

	views, err := ledger.StatementFor(context.Background(), a.Number)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("statement = %d entries, want 0", len(views))
	}
}

func TestStatementForUnknownAccount(t *testing.T) {
	_, ledger, _ := testRig(t)
	if _, err := ledger.StatementFor(context.Background(), 4242); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}
