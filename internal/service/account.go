package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/auth"
	"github.com/psalmeida/bancodigital/internal/domain"
	"github.com/psalmeida/bancodigital/internal/store"
)

// AccountService handles the account lifecycle: registration, profile
// updates, deletion with ledger reassignment, and login. Balance never
// changes here; that is the transfer engine's job.
type AccountService struct {
	repo   store.Repository
	tokens *auth.Authority
	sink   int64
	now    func() time.Time
}

func NewAccountService(repo store.Repository, tokens *auth.Authority, sink int64) *AccountService {
	return &AccountService{repo: repo, tokens: tokens, sink: sink, now: time.Now}
}

// Create registers a new account with balance zero and the USER role.
func (s *AccountService) Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	if req.Email == "" {
		return nil, domain.ErrEmailRequired
	}
	if req.Password == "" {
		return nil, domain.ErrPasswordRequired
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateAccount(ctx, &domain.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Balance:      decimal.Zero,
		Roles:        []string{"USER"},
	})
}

// Update applies an owner-initiated profile change. A new email that
// belongs to a different account is a conflict. The balance field is
// untouchable from here.
func (s *AccountService) Update(ctx context.Context, number int64, req domain.UpdateAccountRequest) (*domain.Account, error) {
	acct, err := s.repo.AccountByID(ctx, number)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != acct.Email {
		exists, err := s.repo.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailTaken
		}
		acct.Email = req.Email
	}
	if req.Name != "" {
		acct.Name = req.Name
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		acct.PasswordHash = hash
	}

	return s.repo.SaveAccount(ctx, acct)
}

// Delete removes the account after reassigning every ledger fact that
// references it to the sink account, keeping the ledger referentially
// valid. Reassignment and removal share one transactional scope.
func (s *AccountService) Delete(ctx context.Context, number int64) error {
	if _, err := s.repo.AccountByID(ctx, number); err != nil {
		return err
	}
	return s.repo.InTx(ctx, func(tx store.Tx) error {
		if err := tx.ReassignTransactions(ctx, number, s.sink); err != nil {
			return err
		}
		return tx.DeleteAccount(ctx, number)
	})
}

func (s *AccountService) Get(ctx context.Context, number int64) (*domain.Account, error) {
	return s.repo.AccountByID(ctx, number)
}

func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Login verifies credentials and issues a session token. Lookup failure
// and password mismatch are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	acct, err := s.repo.AccountByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(req.Password, acct.PasswordHash) {
		return nil, domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(acct.Email, acct.Roles, s.now())
	if err != nil {
		return nil, err
	}
	return &domain.Session{Login: acct.Email, Number: acct.Number, Token: token}, nil
}
