package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/psalmeida/bancodigital/internal/auth"
	"github.com/psalmeida/bancodigital/internal/domain"
)

type amountBody struct {
	Amount *decimal.Decimal `json:"amount"`
}

type pixPayBody struct {
	Payload string `json:"qr_code_text"`
}

func derefAmount(a *decimal.Decimal) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return *a
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/adicionar"

	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	acct, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, acct, r.Method, endpoint)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/login"

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	session, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, session, r.Method, endpoint)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}"

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, acct, r.Method, endpoint)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/listartodas"

	if err := auth.RequireRole(claimsFrom(r.Context()), auth.AdminRole); err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, accounts, r.Method, endpoint)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}/atualizar"

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	updated, err := h.accounts.Update(r.Context(), acct.Number, req)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, updated, r.Method, endpoint)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}"

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	if err := h.accounts.Delete(r.Context(), acct.Number); err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "account closed"}, r.Method, endpoint)
}

// handleDeposit accepts unauthenticated requests. A cash deposit does not
// require the depositor to hold a session.
func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}/depositar"
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
	defer timer.ObserveDuration()

	number, err := accountNumber(r)
	if err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	var body amountBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	view, err := h.engine.Deposit(r.Context(), number, derefAmount(body.Amount))
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, view, r.Method, endpoint)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}/sacar"
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
	defer timer.ObserveDuration()

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	var body amountBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	view, err := h.engine.Withdraw(r.Context(), acct.Number, derefAmount(body.Amount))
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, view, r.Method, endpoint)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}/transferencia"
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
	defer timer.ObserveDuration()

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	view, err := h.engine.Transfer(r.Context(), acct.Number, req.RecipientNumber, derefAmount(req.Amount))
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, view, r.Method, endpoint)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/conta/{numero}/extrato"

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	views, err := h.ledger.StatementFor(r.Context(), acct.Number)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, views, r.Method, endpoint)
}

func (h *Handler) handlePixGenerate(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/pix/gerar/{numero}"

	number, err := accountNumber(r)
	if err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	var body amountBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	charge, err := h.pix.Generate(r.Context(), number, derefAmount(body.Amount))
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, charge, r.Method, endpoint)
}

func (h *Handler) handlePixPay(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/pix/pagar/{numero}"
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
	defer timer.ObserveDuration()

	acct, err := h.ownedAccount(r)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}

	var body pixPayBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, domain.ErrMalformedPayload, r.Method, endpoint)
		return
	}

	view, err := h.pix.Redeem(r.Context(), acct.Number, body.Payload)
	if err != nil {
		h.respondError(w, err, r.Method, endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, view, r.Method, endpoint)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, r.Method, "/health")
}

// ownedAccount resolves the {numero} path variable and enforces that the
// caller's session belongs to that account. Lookup precedes the guard, so
// a missing account reports 404.
func (h *Handler) ownedAccount(r *http.Request) (*domain.Account, error) {
	number, err := accountNumber(r)
	if err != nil {
		return nil, domain.ErrMalformedPayload
	}
	acct, err := h.accounts.Get(r.Context(), number)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(claimsFrom(r.Context()), acct); err != nil {
		return nil, err
	}
	return acct, nil
}
