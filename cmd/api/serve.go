package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/ledger"
	"github.com/safar/storefront/internal/notify"
	"github.com/safar/storefront/internal/session"
)

const shutdownTimeout = 15 * time.Second

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	kv, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	orderLedger, err := ledger.NewGitHub(ledger.Settings{
		Token: cfg.Ledger.Token,
		Owner: cfg.Ledger.Owner,
		Repo:  cfg.Ledger.Repo,
	}, cfg.Ledger.BaseURL)
	if err != nil {
		return err
	}

	notifiers := []notify.Notifier{notify.NewLine(cfg.Line, &http.Client{Timeout: cfg.Remote.Timeout})}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := notify.DialAMQP(cfg.RabbitMQ)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, order events disabled")
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Store.Location()
	ctl, err := session.New(ctx, session.Options{
		KV:            kv,
		Ledger:        orderLedger,
		Notifiers:     notifiers,
		Location:      loc,
		Log:           log,
		RemoteTimeout: cfg.Remote.Timeout,
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	if cfg.Admin.PasswordHash == "" || cfg.Admin.JWTSecret == "" {
		log.Warn("ADMIN_PASSWORD_HASH or ADMIN_JWT_SECRET not set, admin login disabled")
	}
	authenticator := auth.New(cfg.Admin, nil)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(ctl, authenticator, loc, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}

	// Let pending ledger and notification calls finish.
	ctl.Wait()
	return nil
}
