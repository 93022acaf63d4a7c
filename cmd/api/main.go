package main

import (
	"log"
	"net/http"

	"github.com/psalmeida/bancodigital/internal/api"
	"github.com/psalmeida/bancodigital/internal/auth"
	"github.com/psalmeida/bancodigital/internal/config"
	"github.com/psalmeida/bancodigital/internal/service"
	"github.com/psalmeida/bancodigital/internal/store"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Layers
	tokens := auth.NewAuthority(&auth.Config{
		Key:    cfg.TokenKey,
		Prefix: cfg.TokenPrefix,
		TTL:    cfg.TokenTTL(),
	})
	ledger := service.NewLedger(db)
	engine := service.NewTransferEngine(db, ledger)
	accounts := service.NewAccountService(db, tokens, cfg.SinkAccount)
	pix := service.NewPixGateway(db, engine, cfg.PixWindow())

	handler := api.NewHandler(accounts, engine, ledger, pix, tokens)

	log.Printf("Server starting on :%s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler.Router()); err != nil {
		log.Fatal(err)
	}
}
