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

	log "github.com/sirupsen/logrus"

	"deviseur/internal/app"
	"deviseur/internal/catalog"
	"deviseur/internal/config"
	"deviseur/internal/listener"
	"deviseur/internal/storage"
	"deviseur/internal/web"
)

func main() {
	cfg, err := config.Load()
	must(err)
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session := app.NewSession(db, cfg)
	if _, err := session.LoadCatalogue(ctx, ""); err != nil {
		log.WithError(err).Warn(catalog.FeedbackMessage(0, err))
		if n, err := session.UseCached(ctx); err == nil {
			log.WithField("products", n).Info("using cached catalogue")
		}
	}

	go func() {
		if err := listener.NewService(session).Run(ctx); err != nil {
			log.WithError(err).Error("catalogue refresher stopped")
		}
	}()

	server := web.NewServer(session)
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		must(err)
	}
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
