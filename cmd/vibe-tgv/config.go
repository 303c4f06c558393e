package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-tgv/internal/export"
)

// configKey describes one settable key: its default (nil when computed at
// startup) and how a command-line value is converted.
type configKey struct {
	def   any
	parse func(string) (any, error)
}

var configKeys = map[string]configKey{
	"view.width":         {def: 120, parse: parsePositiveInt},
	"view.height":        {def: 40, parse: parsePositiveInt},
	"view.paired":        {def: false, parse: parseBool},
	"view.modifications": {def: false, parse: parseBool},
	"view.format":        {def: "text", parse: parseFormat},
	"decode.workers":     {def: 0, parse: parseWorkers},
	"cache.path":         {parse: parsePath},
	"verbose":            {def: false, parse: parseBool},
}

func knownConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// parseConfigValue validates value for key and converts it to the type
// the commands read back.
func parseConfigValue(key, value string) (any, error) {
	k, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(knownConfigKeys(), ", "))
	}
	v, err := k.parse(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveInt(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%q is not a positive integer", s)
	}
	return n, nil
}

func parseWorkers(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%q is not a worker count (0 = all CPUs)", s)
	}
	return n, nil
}

func parseBool(s string) (any, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return nil, fmt.Errorf("%q is not a boolean", s)
}

func parseFormat(s string) (any, error) {
	f, err := export.ParseFormat(s)
	if err != nil {
		return nil, err
	}
	return f.String(), nil
}

func parsePath(s string) (any, error) {
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	return s, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-tgv configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-tgv.yaml.",
		Example: `  vibe-tgv config                         # show all config
  vibe-tgv config set view.paired true     # draw mates on one row
  vibe-tgv config set decode.workers 4     # decode with 4 workers
  vibe-tgv config get view.width           # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.vibe-tgv.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	key = strings.ToLower(key)
	v, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, v)

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %v in %s\n", key, v, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
