package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coolbeans/lexchunk/pkg/config"
)

var version = "0.1.0"

// Shared state set up by the root command before any subcommand runs.
var (
	cfgFile string
	manager *config.Manager
	logger  *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexchunk",
		Short: "Split statute text into retrieval chunks",
		Long: `lexchunk turns raw statute text into clause-level chunks with
structured metadata, ready for embedding and retrieval.

It loads text files, finds chapters, articles, addenda and appended tables
using a structure profile, and writes chunks with stable identifiers:
  - chunks as JSON, JSONL or YAML
  - an optional run manifest and embedder passages
  - Prometheus textfile metrics`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./lexchunk.yaml or $HOME/.lexchunk/lexchunk.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(splitCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(profilesCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(configCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration, binds the logging flags and installs the
// default logger.
func setup(cmd *cobra.Command) error {
	var err error
	manager, err = config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(cmd, map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	}); err != nil {
		return err
	}

	logger = manager.Get().Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	manager.SetLogger(logger)
	if file := manager.ConfigFile(); file != "" {
		logger.Debug("using config file", "path", file)
	}
	return nil
}

// bindFlags maps config keys to flag names. Flags the command does not define
// are skipped.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := manager.BindFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig binds the command's flags and returns the merged configuration.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	if err := bindFlags(cmd, keys); err != nil {
		return nil, err
	}
	return manager.Get(), nil
}
