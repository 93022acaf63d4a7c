package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds recorded in the ledger.
const (
	KindDeposit    = "DEPOSIT"
	KindWithdrawal = "WITHDRAWAL"
	KindTransfer   = "TRANSFER"
)

// Account represents a customer's bank account. Balance is only ever
// mutated by the transfer engine; the store persists whatever it is given.
type Account struct {
	Number       int64           `json:"number"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	Roles        []string        `json:"roles"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Transaction is an immutable ledger fact: one completed money movement.
// Sender is nil for deposits, Recipient is nil for withdrawals; at least
// one side is always set. Accounts are referenced by number, never by
// pointer, so reassigning orphaned facts on account deletion is a field
// update rather than object-graph surgery.
type Transaction struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Sender    *int64          `json:"sender_number,omitempty"`
	Recipient *int64          `json:"recipient_number,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Party is the caller-facing summary of one side of a movement.
type Party struct {
	Number int64  `json:"number"`
	Name   string `json:"name"`
}

// TransactionView is the projection of a ledger fact returned to callers:
// kind, counterparty summaries, amount and timestamp. Internal ids and raw
// account references stay out of it.
type TransactionView struct {
	Kind      string          `json:"kind"`
	Sender    *Party          `json:"sender,omitempty"`
	Recipient *Party          `json:"recipient,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateAccountRequest is the registration payload.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateAccountRequest carries an owner-initiated profile update. Balance
// is deliberately absent: only the transfer engine moves money.
type UpdateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TransferRequest is the payload for a peer transfer. Amount is a pointer
// so an absent field is distinguishable from zero; both are rejected.
type TransferRequest struct {
	RecipientNumber int64            `json:"recipient_account"`
	Amount          *decimal.Decimal `json:"amount"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the successful login response.
type Session struct {
	Login  string `json:"login"`
	Number int64  `json:"number"`
	Token  string `json:"token"`
}

// PixCharge is the result of generating a payment code: the raw payload
// text plus its QR image rendered as a data URI.
type PixCharge struct {
	Payload string `json:"payload"`
	QRCode  string `json:"qr_code_base64"`
}
