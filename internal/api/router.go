package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires every endpoint. Deposit and PIX charge generation stay
// public; everything else under an account number runs behind the session
// middleware.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/conta/adicionar", h.handleCreateAccount).Methods(http.MethodPost)
	r.HandleFunc("/conta/{numero:[0-9]+}/depositar", h.handleDeposit).Methods(http.MethodPut)
	r.HandleFunc("/pix/gerar/{numero:[0-9]+}", h.handlePixGenerate).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(h.authenticate)
	protected.HandleFunc("/conta/listartodas", h.handleListAccounts).Methods(http.MethodGet)
	protected.HandleFunc("/conta/{numero:[0-9]+}", h.handleGetAccount).Methods(http.MethodGet)
	protected.HandleFunc("/conta/{numero:[0-9]+}/atualizar", h.handleUpdateAccount).Methods(http.MethodPut)
	protected.HandleFunc("/conta/{numero:[0-9]+}", h.handleDeleteAccount).Methods(http.MethodDelete)
	protected.HandleFunc("/conta/{numero:[0-9]+}/sacar", h.handleWithdraw).Methods(http.MethodPut)
	protected.HandleFunc("/conta/{numero:[0-9]+}/transferencia", h.handleTransfer).Methods(http.MethodPut)
	protected.HandleFunc("/conta/{numero:[0-9]+}/extrato", h.handleStatement).Methods(http.MethodGet)
	protected.HandleFunc("/pix/pagar/{numero:[0-9]+}", h.handlePixPay).Methods(http.MethodPost)

	return r
}
