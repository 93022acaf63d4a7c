package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/domain"
	"github.com/psalmeida/bancodigital/internal/store"
)

// TransferEngine is the only component that mutates balances. Every
// operation runs inside one transactional scope: row-locked reads, the
// balance check, the balance write and the ledger append commit together
// or not at all. Ownership is enforced at the HTTP boundary before any
// call lands here.
type TransferEngine struct {
	repo   store.Repository
	ledger *Ledger
}

func NewTransferEngine(repo store.Repository, ledger *Ledger) *TransferEngine {
	return &TransferEngine{repo: repo, ledger: ledger}
}

// Deposit credits the account and appends a DEPOSIT fact.
func (e *TransferEngine) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (*domain.TransactionView, error) {
	var view *domain.TransactionView
	err := e.repo.InTx(ctx, func(tx store.Tx) error {
		acct, err := tx.AccountForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return domain.ErrInvalidAmount
		}

		acct.Balance = acct.Balance.Add(amount)
		if err := tx.UpdateBalance(ctx, acct.Number, acct.Balance); err != nil {
			return err
		}
		fact, err := e.ledger.AppendDeposit(ctx, tx, acct.Number, amount)
		if err != nil {
			return err
		}
		view = &domain.TransactionView{
			Kind:      fact.Kind,
			Recipient: partyOf(acct),
			Amount:    fact.Amount,
			CreatedAt: fact.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Withdraw debits the account and appends a WITHDRAWAL fact. The funds
// check runs before the amount-sign check; callers observe insufficient
// funds only for amounts that exceed the balance.
func (e *TransferEngine) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (*domain.TransactionView, error) {
	var view *domain.TransactionView
	err := e.repo.InTx(ctx, func(tx store.Tx) error {
		acct, err := tx.AccountForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if acct.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		if amount.Sign() <= 0 {
			return domain.ErrInvalidAmount
		}

		acct.Balance = acct.Balance.Sub(amount)
		if err := tx.UpdateBalance(ctx, acct.Number, acct.Balance); err != nil {
			return err
		}
		fact, err := e.ledger.AppendWithdrawal(ctx, tx, acct.Number, amount)
		if err != nil {
			return err
		}
		view = &domain.TransactionView{
			Kind:      fact.Kind,
			Sender:    partyOf(acct),
			Amount:    fact.Amount,
			CreatedAt: fact.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Transfer moves amount between two accounts. Both rows are locked in
// ascending number order so concurrent transfers over the same pair cannot
// deadlock; transfers over disjoint pairs proceed in parallel.
func (e *TransferEngine) Transfer(ctx context.Context, senderNumber, recipientNumber int64, amount decimal.Decimal) (*domain.TransactionView, error) {
	var view *domain.TransactionView
	err := e.repo.InTx(ctx, func(tx store.Tx) error {
		first, second := senderNumber, recipientNumber
		if first > second {
			first, second = second, first
		}

		acctA, err := tx.AccountForUpdate(ctx, first)
		if err != nil {
			return err
		}
		var acctB *domain.Account
		if second != first {
			if acctB, err = tx.AccountForUpdate(ctx, second); err != nil {
				return err
			}
		}

		if senderNumber == recipientNumber {
			return domain.ErrSameAccount
		}

		sender, recipient := acctA, acctB
		if sender.Number != senderNumber {
			sender, recipient = acctB, acctA
		}

		if sender.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		if amount.Sign() <= 0 {
			return domain.ErrInvalidAmount
		}

		sender.Balance = sender.Balance.Sub(amount)
		recipient.Balance = recipient.Balance.Add(amount)
		if err := tx.UpdateBalance(ctx, sender.Number, sender.Balance); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, recipient.Number, recipient.Balance); err != nil {
			return err
		}

		fact, err := e.ledger.AppendTransfer(ctx, tx, sender.Number, recipient.Number, amount)
		if err != nil {
			return err
		}
		view = &domain.TransactionView{
			Kind:      fact.Kind,
			Sender:    partyOf(sender),
			Recipient: partyOf(recipient),
			Amount:    fact.Amount,
			CreatedAt: fact.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func partyOf(acct *domain.Account) *domain.Party {
	return &domain.Party{Number: acct.Number, Name: acct.Name}
}
