package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flipcart/storefront/internal/config"
	"github.com/flipcart/storefront/internal/logging"
	"github.com/flipcart/storefront/internal/stub"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := stub.OpenDB(context.Background(), cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := stub.Seed(db); err != nil {
		log.Error("seed catalog", "error", err)
		os.Exit(1)
	}

	e := stub.New(db, []byte(cfg.JWTSecret), log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("stub backend listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
