package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mysphere/internal/cli"
	"mysphere/internal/config"
	"mysphere/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "mysphere",
	Short: "Personal finance, body weight and wholesale tracker",
	Long: `mysphere serves the tracking API and its analytics.

Configuration comes from the environment (and a .env file when present).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reportCmd())
}

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and the logger every subcommand needs.
func bootstrap(component string) (*config.Config, *log.Logger, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(cfg.LogLevel, component), nil
}
