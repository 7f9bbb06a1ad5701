package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mysphere/internal/amqp"
	"mysphere/internal/cli"
	"mysphere/internal/config"
	"mysphere/internal/log"
	"mysphere/internal/period"
	"mysphere/internal/sheets"
	gsheet "mysphere/internal/sheets/google"
	"mysphere/internal/sheets/memory"
	"mysphere/internal/worker"
)

type options struct {
	dryRun   bool
	backfill bool
}

func main() {
	cli.LoadEnvFile()

	var opts options
	cmd := &cobra.Command{
		Use:   "mysphere-worker",
		Short: "Journal record changes to a Google spreadsheet",
		Long: `mysphere-worker consumes record change events from AMQP and appends one row
per change to the Expenses, BodyWeight and Wholesale tabs of a spreadsheet.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print journal rows instead of writing to Google Sheets")
	cmd.Flags().BoolVar(&opts.backfill, "backfill", false, "write a snapshot row for every stored record, then exit")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, opts options) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)

	if !opts.dryRun {
		validate := cfg.ValidateWorker
		if opts.backfill {
			validate = cfg.ValidateBackfill
		}
		if err := validate(); err != nil {
			return err
		}
	} else if cfg.AMQPURL == "" && !opts.backfill {
		return errors.New("AMQP_URL is required to consume record events")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repo, err := cli.InitSQLite(logger, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	journal, err := openJournal(ctx, cfg, out, opts.dryRun)
	if err != nil {
		return err
	}
	w := worker.NewSyncWorker(repo, journal, period.SystemClock{Location: loc})

	if opts.backfill {
		_, err := w.Backfill(ctx)
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	ctx, done := cli.GracefulShutdown(ctx, logger, 10*time.Second, nil)
	logger.Info("Starting mysphere-worker",
		"queue", cfg.AMQPQueue,
		"dry_run", opts.dryRun)

	err = client.Consume(ctx, w.Handle)
	stop()
	<-done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openJournal(ctx context.Context, cfg *config.Config, out io.Writer, dryRun bool) (sheets.Journal, error) {
	if dryRun {
		return memory.New(out), nil
	}
	return gsheet.New(ctx, cfg.GoogleSpreadsheetID, gsheet.Credentials{
		File: cfg.GoogleServiceAccountFile,
		JSON: cfg.GoogleServiceAccountJSON,
	})
}
