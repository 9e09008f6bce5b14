// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/deliver"
	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/internal/schedule"
	"github.com/pdiddy/brief-engine/internal/server"
	"github.com/pdiddy/brief-engine/internal/store"
	"github.com/pdiddy/brief-engine/internal/trends"
)

var logger = logging.New("main")

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the weekly email scheduler",
	Long: `Serve exposes POST /generate, POST /subscribe, and a GET / liveness
endpoint, and runs the weekly delivery scheduler in the background until
the process is interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	// Missing mail credentials would break every delivery; fail at startup
	// rather than on the first send.
	if cfg.Mail.Username == "" || cfg.Mail.Password == "" {
		return fmt.Errorf("mail credentials not configured: set mail.username and mail.password (or the smtp-password secret)")
	}

	provider, err := trends.NewProvider(cfg.Trends)
	if err != nil {
		return err
	}
	fetcher := trends.New(provider)
	gen := generate.New(cfg.Generator)
	subs := store.New(cfg.Store.Path)
	channel := deliver.NewChannel(deliver.NewSMTPTransport(cfg.Mail))

	sched := schedule.New(schedule.Deps{
		Subscriptions: subs,
		Insights:      fetcher,
		Generator:     gen,
		Channel:       channel,
		Interval:      cfg.Schedule.Interval,
		ArticleCount:  cfg.Trends.ArticleCount,
	})
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.New(server.Deps{
			Insights:      fetcher,
			Generator:     gen,
			Subscriptions: subs,
			Channel:       channel,
			ArticleCount:  cfg.Trends.ArticleCount,
		}).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
