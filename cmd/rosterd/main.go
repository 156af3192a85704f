package main

import (
	_ "embed"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rosterdev/roster-store/internal/api"
	"github.com/rosterdev/roster-store/internal/app"
	"github.com/rosterdev/roster-store/internal/config"
	"github.com/rosterdev/roster-store/internal/engine"
	"github.com/rosterdev/roster-store/internal/flow"
	"github.com/rosterdev/roster-store/internal/form"
	"github.com/rosterdev/roster-store/internal/server"
	"github.com/rosterdev/roster-store/internal/store"
	"github.com/rosterdev/roster-store/internal/vault"
	"github.com/rosterdev/roster-store/internal/web"
	"github.com/rosterdev/roster-store/pkg/schema"
)

//go:embed schema.json
var defaultSchema []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	// Persistence and engine
	persister, err := engine.NewPersistence(cfg.Store.DataDir)
	if err != nil {
		logger.Error("failed to initialize persistence", "err", err)
		os.Exit(1)
	}

	initialData, err := persister.LoadAll()
	if err != nil {
		logger.Warn("could not load existing data", "err", err)
	}

	kv := engine.NewMemStore(initialData, persister)
	logger.Info("engine started", "buckets", len(initialData), "data_dir", cfg.Store.DataDir)

	// One-shot import from another data directory
	if cfg.Store.ImportDir != "" {
		src, err := engine.NewPersistence(cfg.Store.ImportDir)
		if err != nil {
			logger.Error("import directory unusable", "dir", cfg.Store.ImportDir, "err", err)
			os.Exit(1)
		}
		srcData, err := src.LoadAll()
		if err != nil {
			logger.Error("import load failed", "err", err)
			os.Exit(1)
		}
		if err := engine.Migrate(engine.NewMemStore(srcData, nil), kv); err != nil {
			logger.Error("import failed", "err", err)
			os.Exit(1)
		}
		logger.Info("imported data", "dir", cfg.Store.ImportDir)
	}

	// Record store, optionally encrypting credentials at rest
	masterKey, err := vault.ParseKey(cfg.Store.MasterKey)
	if err != nil {
		logger.Error("invalid master key", "err", err)
		os.Exit(1)
	}
	var opts []store.Option
	if masterKey != nil {
		opts = append(opts, store.WithMasterKey(masterKey))
		logger.Info("credential encryption at rest enabled")
	}
	roster := store.New(kv, opts...)

	// Form schema
	raw := defaultSchema
	if cfg.Schema.Path != "" {
		raw, err = os.ReadFile(cfg.Schema.Path)
		if err != nil {
			logger.Error("could not read schema file", "path", cfg.Schema.Path, "err", err)
			os.Exit(1)
		}
	}
	f, err := form.Build(schema.Parse(raw))
	if err != nil {
		logger.Error("invalid form schema", "err", err)
		os.Exit(1)
	}

	flows := flow.New(roster, logger)

	// TCP admin protocol
	router := server.NewRouter(roster)
	if cfg.Server.DisableTLS {
		logger.Warn("TLS disabled for TCP listener")
	} else {
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			logger.Error("failed to generate TLS certificate", "err", err)
			os.Exit(1)
		}
		router.SetCertificate(cert)
	}

	// HTTP pages and API
	h := &api.Handler{Roster: roster, Flows: flows, Form: f, Log: logger}
	r := gin.Default()
	r.SetHTMLTemplate(web.Templates())
	h.Mount(r)

	go func() {
		logger.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := r.Run(":" + cfg.Server.HTTPPort); err != nil {
			logger.Error("HTTP server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: flush pending bucket writes before exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutdown signal received, finalizing disk writes")
		router.Stop()
		kv.Wait()
		logger.Info("persistence complete, exiting")
		os.Exit(0)
	}()

	logger.Info("TCP server listening", "port", cfg.Server.TCPPort, "tls", !cfg.Server.DisableTLS)
	if err := router.Listen(cfg.Server.TCPPort); err != nil {
		logger.Error("TCP server failed", "err", err)
		os.Exit(1)
	}
}
