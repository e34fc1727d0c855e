// walletd serves the keystore HTTP API.
//
// @title        ether-keystore API
// @version      1.0
// @description  Local Ethereum keystore: password-protected accounts, v3 keystore import/export and message signing.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/ether-keystore/docs"
	"github.com/AlexZinkM/ether-keystore/internal/api"
	"github.com/AlexZinkM/ether-keystore/internal/config"
	"github.com/AlexZinkM/ether-keystore/internal/crypto"
	"github.com/AlexZinkM/ether-keystore/internal/handler"
	"github.com/AlexZinkM/ether-keystore/internal/logger"
	"github.com/AlexZinkM/ether-keystore/internal/storage"
	"github.com/AlexZinkM/ether-keystore/internal/vault"
	"github.com/AlexZinkM/ether-keystore/keystore"

	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New()
	if err := log.Init(config.GetLogLevel()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if err := run(zapLogger); err != nil {
		zapLogger.Fatal("walletd stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := openVault()
	if err != nil {
		return err
	}

	ks, err := keystore.Open(ctx, store, v, keystore.Config{
		Params:  crypto.Params{ScryptN: config.GetScryptN(), ScryptR: 8, ScryptP: config.GetScryptP()},
		Workers: config.GetWorkers(),
		Logger:  log,
	})
	if err != nil {
		return err
	}
	defer ks.Wait()

	router := api.SetupRouter(handler.NewKeystoreHandler(ks, log), log)
	server := &http.Server{
		Addr:              net.JoinHostPort("", config.GetPort()),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server",
			zap.String("addr", server.Addr),
			zap.String("storage", config.GetStorageBackend()),
			zap.String("vault", config.GetVaultBackend()),
			zap.Int("wallets", len(ks.Registry().Wallets())),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage() (storage.Store, error) {
	switch config.GetStorageBackend() {
	case "postgres":
		return storage.OpenPostgres(config.GetDatabaseDSN())
	case "memory":
		return storage.NewMemory(), nil
	default:
		return storage.NewBolt(config.GetDataDir())
	}
}

func openVault() (vault.Vault, error) {
	backend := config.GetVaultBackend()
	if backend == "memory" {
		return vault.NewMemoryVault(), nil
	}

	cfg := vault.Config{
		ServiceName: config.GetVaultServiceName(),
		Backend:     backend,
		FileDir:     filepath.Join(config.GetDataDir(), "vault"),
	}
	if backend == "file" {
		// Prompt for the vault passphrase at startup (hidden input, stored in memory)
		if err := config.PromptForPassword(); err != nil {
			return nil, err
		}
		cfg.Password = func() (string, error) {
			pw, err := config.GetVaultPasswordBytes()
			if err != nil {
				return "", err
			}
			defer clear(pw)
			return string(pw), nil
		}
	}
	return vault.Open(cfg)
}
