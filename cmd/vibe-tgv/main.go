// Package main provides the vibe-tgv command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-tgv"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe-tgv",
		Short: "Terminal genome viewer for aligned reads and base modifications",
		Long: `vibe-tgv renders reads from a BAM or SAM file as a grid of colored cells,
optionally paired and colored by MM/ML base modification calls, and exports
the view as text, HTML or SVG.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages to stderr")
	viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newModsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-tgv version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads ~/.vibe-tgv.yaml and VIBE_TGV_* environment variables.
// A missing config file is not an error.
func initConfig() error {
	for key, k := range configKeys {
		if k.def != nil {
			viper.SetDefault(key, k.def)
		}
	}

	viper.SetEnvPrefix("VIBE_TGV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.SetDefault("cache.path", filepath.Join(home, ".vibe-tgv", "calls.duckdb"))
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// bindFlags binds viper keys to the named flags of cmd. It runs from
// PreRunE since view and mods share decode.workers.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// newLogger builds the CLI logger: warnings and errors by default, debug
// output in development format with --verbose.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}
