package store

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/domain"
)

// Memory is an in-process Repository used by tests and local runs. A single
// mutex serializes transactional scopes; on error the pre-scope snapshot is
// restored, so InTx is all-or-nothing like its Postgres counterpart.
type Memory struct {
	mu       sync.Mutex
	accounts map[int64]*domain.Account
	facts    []domain.Transaction
	nextAcct int64
	nextFact int64
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[int64]*domain.Account),
		nextAcct: 100,
		nextFact: 1,
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Roles = append([]string(nil), a.Roles...)
	return &c
}

func (m *Memory) CreateAccount(_ context.Context, acct *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if existing.Email == acct.Email {
			return nil, domain.ErrEmailTaken
		}
	}

	stored := cloneAccount(acct)
	stored.Number = m.nextAcct
	stored.CreatedAt = time.Now()
	m.nextAcct++
	m.accounts[stored.Number] = stored
	return cloneAccount(stored), nil
}

func (m *Memory) AccountByID(_ context.Context, number int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountLocked(number)
}

func (m *Memory) accountLocked(number int64) (*domain.Account, error) {
	acct, ok := m.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(acct), nil
}

func (m *Memory) AccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acct := range m.accounts {
		if acct.Email == email {
			return cloneAccount(acct), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *Memory) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acct := range m.accounts {
		if acct.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) SaveAccount(_ context.Context, acct *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[acct.Number]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	for number, existing := range m.accounts {
		if number != acct.Number && existing.Email == acct.Email {
			return nil, domain.ErrEmailTaken
		}
	}

	stored := cloneAccount(acct)
	m.accounts[stored.Number] = stored
	return cloneAccount(stored), nil
}

func (m *Memory) ListAccounts(_ context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := make([]domain.Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		accounts = append(accounts, *cloneAccount(acct))
	}
	return accounts, nil
}

func (m *Memory) TransactionsFor(_ context.Context, number int64) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var facts []domain.Transaction
	for _, fact := range m.facts {
		if (fact.Sender != nil && *fact.Sender == number) ||
			(fact.Recipient != nil && *fact.Recipient == number) {
			facts = append(facts, fact)
		}
	}
	return facts, nil
}

func (m *Memory) InTx(_ context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Snapshot for rollback.
	accounts := make(map[int64]*domain.Account, len(m.accounts))
	for number, acct := range m.accounts {
		accounts[number] = cloneAccount(acct)
	}
	facts := append([]domain.Transaction(nil), m.facts...)
	nextFact := m.nextFact

	if err := fn(&memTx{m: m}); err != nil {
		m.accounts = accounts
		m.facts = facts
		m.nextFact = nextFact
		return err
	}
	return nil
}

// memTx operates on the store while the scope's mutex is held.
type memTx struct {
	m *Memory
}

func (t *memTx) AccountForUpdate(_ context.Context, number int64) (*domain.Account, error) {
	return t.m.accountLocked(number)
}

func (t *memTx) UpdateBalance(_ context.Context, number int64, balance decimal.Decimal) error {
	acct, ok := t.m.accounts[number]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acct.Balance = balance
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, fact *domain.Transaction) (*domain.Transaction, error) {
	stored := *fact
	stored.ID = t.m.nextFact
	t.m.nextFact++
	t.m.facts = append(t.m.facts, stored)
	out := stored
	return &out, nil
}

func (t *memTx) ReassignTransactions(_ context.Context, from, to int64) error {
	for i := range t.m.facts {
		fact := &t.m.facts[i]
		if fact.Sender != nil && *fact.Sender == from {
			n := to
			fact.Sender = &n
		}
		if fact.Recipient != nil && *fact.Recipient == from {
			n := to
			fact.Recipient = &n
		}
	}
	return nil
}

func (t *memTx) DeleteAccount(_ context.Context, number int64) error {
	if _, ok := t.m.accounts[number]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(t.m.accounts, number)
	return nil
}
