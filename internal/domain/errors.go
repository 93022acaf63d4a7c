package domain

import "errors"

// Business-rule failures raised at the point of detection. They propagate
// unmodified to the HTTP layer, which maps each one to a fixed status code.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrSameAccount       = errors.New("sender and recipient are the same account")
	ErrEmailRequired     = errors.New("email is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrMalformedPayload  = errors.New("malformed pix payload")
	ErrPixExpired        = errors.New("pix payload expired")
)
