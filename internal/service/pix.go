package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/psalmeida/bancodigital/internal/domain"
	"github.com/psalmeida/bancodigital/internal/store"
)

const qrSize = 300

// PixGateway builds and consumes time-bounded payment payloads. A payload
// is self-contained: redeeming it needs only its own expiry field compared
// against the clock, never a server-side lookup table. Settlement is
// delegated entirely to the transfer engine, so every transfer invariant
// applies to a PIX payment unchanged.
type PixGateway struct {
	repo   store.Repository
	engine *TransferEngine
	window time.Duration
	now    func() time.Time
}

func NewPixGateway(repo store.Repository, engine *TransferEngine, window time.Duration) *PixGateway {
	return &PixGateway{repo: repo, engine: engine, window: window, now: time.Now}
}

// pixPayload is the wire shape handed to the payer, usually inside a QR
// code. Pointer fields distinguish absent from zero when parsing.
type pixPayload struct {
	ID              string           `json:"id"`
	RecipientName   string           `json:"recipient_name"`
	RecipientNumber *int64           `json:"recipient_account"`
	Amount          *decimal.Decimal `json:"amount"`
	ExpiresAt       *time.Time       `json:"expires_at"`
}

// Generate builds a charge for the recipient: the payload text plus its QR
// image as a base64 PNG data URI. The payload expires after the configured
// window.
func (g *PixGateway) Generate(ctx context.Context, recipientNumber int64, amount decimal.Decimal) (*domain.PixCharge, error) {
	acct, err := g.repo.AccountByID(ctx, recipientNumber)
	if err != nil {
		return nil, err
	}

	expiry := g.now().Add(g.window)
	raw, err := json.Marshal(pixPayload{
		ID:              uuid.NewString(),
		RecipientName:   acct.Name,
		RecipientNumber: &acct.Number,
		Amount:          &amount,
		ExpiresAt:       &expiry,
	})
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(string(raw), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("qr encoding failed: %w", err)
	}

	return &domain.PixCharge{
		Payload: string(raw),
		QRCode:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Redeem settles a charge from the payer's account. Expiry is evaluated
// here, at redemption time; there is no background sweep.
func (g *PixGateway) Redeem(ctx context.Context, senderNumber int64, payloadText string) (*domain.TransactionView, error) {
	var p pixPayload
	if err := json.Unmarshal([]byte(payloadText), &p); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	if p.RecipientNumber == nil || p.Amount == nil || p.ExpiresAt == nil {
		return nil, domain.ErrMalformedPayload
	}
	if g.now().After(*p.ExpiresAt) {
		return nil, domain.ErrPixExpired
	}

	return g.engine.Transfer(ctx, senderNumber, *p.RecipientNumber, *p.Amount)
}
