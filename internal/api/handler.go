package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/psalmeida/bancodigital/internal/auth"
	"github.com/psalmeida/bancodigital/internal/domain"
	"github.com/psalmeida/bancodigital/internal/service"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bank_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Handler exposes the core services over HTTP. It owns no business rule:
// it binds parameters, runs the authorization guard, and maps the error
// taxonomy onto status codes.
type Handler struct {
	accounts *service.AccountService
	engine   *service.TransferEngine
	ledger   *service.Ledger
	pix      *service.PixGateway
	tokens   *auth.Authority
}

func NewHandler(accounts *service.AccountService, engine *service.TransferEngine, ledger *service.Ledger, pix *service.PixGateway, tokens *auth.Authority) *Handler {
	return &Handler{accounts: accounts, engine: engine, ledger: ledger, pix: pix, tokens: tokens}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error, method, endpoint string) {
	code, msg := statusFor(err)
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}

// statusFor maps the error taxonomy onto fixed status codes. Business
// failures carry their own message; anything unexpected stays opaque.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrDenied),
		errors.Is(err, domain.ErrBadCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrMalformedToken):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrPasswordRequired),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrMalformedPayload),
		errors.Is(err, domain.ErrPixExpired):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func accountNumber(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["numero"], 10, 64)
}
