package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mysphere/internal/amqp"
	"mysphere/internal/cli"
	apphttp "mysphere/internal/http"
	"mysphere/internal/log"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap(log.ComponentApp)
	if err != nil {
		return err
	}

	repo, err := cli.InitSQLite(logger, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	opts := apphttp.Options{Logger: logger}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, record events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			opts.Publisher = client
			logger.Info("Publishing record events", "exchange", cfg.AMQPExchange)
		}
	}

	srv, err := apphttp.NewServer(cfg, repo, opts)
	if err != nil {
		return err
	}

	ctx, done := cli.GracefulShutdown(cmd.Context(), logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	})

	logger.Info("Starting mysphere server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"environment", cfg.Environment,
		"timezone", cfg.Timezone)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			return err
		}
	case <-ctx.Done():
	}
	<-done
	logger.Info("Server stopped gracefully")
	return nil
}
