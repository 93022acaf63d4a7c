package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/domain"
	"github.com/psalmeida/bancodigital/internal/store"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testRig(t *testing.T) (*store.Memory, *Ledger, *TransferEngine) {
	t.Helper()
	repo := store.NewMemory()
	ledger := NewLedger(repo)
	return repo, ledger, NewTransferEngine(repo, ledger)
}

func seedAccount(t *testing.T, repo *store.Memory, name, email string, balance int64) *domain.Account {
	t.Helper()
	acct, err := repo.CreateAccount(context.Background(), &domain.Account{
		Name:    name,
		Email:   email,
		Balance: dec(balance),
		Roles:   []string{"USER"},
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acct
}

func balanceOf(t *testing.T, repo *store.Memory, number int64) decimal.Decimal {
	t.Helper()
	acct, err := repo.AccountByID(context.Background(), number)
	if err != nil {
		t.Fatalf("balance lookup: %v", err)
	}
	return acct.Balance
}

func TestDepositCreditsBalanceAndAppendsFact(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 100)

	view, err := engine.Deposit(ctx, acct.Number, dec(40))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(140)) {
		t.Errorf("balance = %s, want 140", got)
	}
	if view.Kind != domain.KindDeposit {
		t.Errorf("kind = %q", view.Kind)
	}
	if view.Sender != nil {
		t.Error("deposit view names a sender")
	}
	if view.Recipient == nil || view.Recipient.Number != acct.Number {
		t.Errorf("recipient = %+v, want account %d", view.Recipient, acct.Number)
	}

	facts, _ := repo.TransactionsFor(ctx, acct.Number)
	if len(facts) != 1 {
		t.Fatalf("facts = %d, want 1", len(facts))
	}
	fact := facts[0]
	if fact.Kind != domain.KindDeposit || fact.Sender != nil ||
		fact.Recipient == nil || *fact.Recipient != acct.Number || !fact.Amount.Equal(dec(40)) {
		t.Errorf("unexpected fact %+v", fact)
	}
}

func TestDepositRejectsNonPositiveAmounts(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 100)

	// Zero also stands in for an absent amount: the boundary maps a null
	// body to decimal zero.
	for _, amount := range []decimal.Decimal{dec(0), dec(-5), decimal.Decimal{}} {
		if _, err := engine.Deposit(ctx, acct.Number, amount); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Deposit(%s) err = %v, want ErrInvalidAmount", amount, err)
		}
	}

	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(100)) {
		t.Errorf("balance = %s, want unchanged 100", got)
	}
	if facts, _ := repo.TransactionsFor(ctx, acct.Number); len(facts) != 0 {
		t.Errorf("facts = %d, want 0", len(facts))
	}
}

func TestDepositUnknownAccount(t *testing.T) {
	_, _, engine := testRig(t)
	if _, err := engine.Deposit(context.Background(), 12345, dec(10)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestWithdrawDebitsBalance(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 100)

	view, err := engine.Withdraw(ctx, acct.Number, dec(30))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(70)) {
		t.Errorf("balance = %s, want 70", got)
	}
	if view.Kind != domain.KindWithdrawal || view.Recipient != nil ||
		view.Sender == nil || view.Sender.Number != acct.Number {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 100)

	if _, err := engine.Withdraw(ctx, acct.Number, dec(150)); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(100)) {
		t.Errorf("balance = %s, want unchanged 100", got)
	}
	if facts, _ := repo.TransactionsFor(ctx, acct.Number); len(facts) != 0 {
		t.Errorf("facts = %d, want 0", len(facts))
	}
}

func TestWithdrawChecksFundsBeforeSign(t *testing.T) {
	// The funds check runs first. A negative amount never trips it (the
	// balance is never below a negative number), so the sign check is what
	// rejects it. This ordering is a confirmed design choice.
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 50)

	if _, err := engine.Withdraw(ctx, acct.Number, dec(-10)); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("negative amount err = %v, want ErrInvalidAmount", err)
	}
	if _, err := engine.Withdraw(ctx, acct.Number, dec(0)); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero amount err = %v, want ErrInvalidAmount", err)
	}
	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(50)) {
		t.Errorf("balance = %s, want unchanged 50", got)
	}
}

func TestTransferMovesAndConserves(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	a := seedAccount(t, repo, "Alice", "alice@bank.io", 500)
	b := seedAccount(t, repo, "Bob", "bob@bank.io", 200)

	view, err := engine.Transfer(ctx, a.Number, b.Number, dec(150))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	balA, balB := balanceOf(t, repo, a.Number), balanceOf(t, repo, b.Number)
	if !balA.Equal(dec(350)) || !balB.Equal(dec(350)) {
		t.Errorf("balances = %s/%s, want 350/350", balA, balB)
	}
	if !balA.Add(balB).Equal(dec(700)) {
		t.Errorf("total = %s, money not conserved", balA.Add(balB))
	}
	if view.Sender.Number != a.Number || view.Recipient.Number != b.Number || !view.Amount.Equal(dec(150)) {
		t.Errorf("unexpected view %+v", view)
	}

	facts, _ := repo.TransactionsFor(ctx, a.Number)
	if len(facts) != 1 || facts[0].Kind != domain.KindTransfer || !facts[0].Amount.Equal(dec(150)) {
		t.Fatalf("unexpected facts %+v", facts)
	}

	// A second transfer beyond the remaining balance fails and leaves both
	// balances where they were.
	if _, err := engine.Transfer(ctx, a.Number, b.Number, dec(1000)); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if balA, balB = balanceOf(t, repo, a.Number), balanceOf(t, repo, b.Number); !balA.Equal(dec(350)) || !balB.Equal(dec(350)) {
		t.Errorf("balances after failed transfer = %s/%s, want 350/350", balA, balB)
	}
}

func TestTransferToSelf(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 500)

	if _, err := engine.Transfer(ctx, acct.Number, acct.Number, dec(10)); !errors.Is(err, domain.ErrSameAccount) {
		t.Fatalf("err = %v, want ErrSameAccount", err)
	}
	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(500)) {
		t.Errorf("balance = %s, want unchanged 500", got)
	}
}

func TestTransferUnknownParty(t *testing.T) {
	repo, _, engine := testRig(t)
	ctx := context.Background()
	acct := seedAccount(t, repo, "Alice", "alice@bank.io", 500)

	if _, err := engine.Transfer(ctx, acct.Number, 99999, dec(10)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("unknown recipient err = %v, want ErrAccountNotFound", err)
	}
	if _, err := engine.Transfer(ctx, 99999, acct.Number, dec(10)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("unknown sender err = %v, want ErrAccountNotFound", err)
	}
	if got := balanceOf(t, repo, acct.Number); !got.Equal(dec(500)) {
		t.Errorf("balance = %s, want unchanged 500", got)
	}
}
