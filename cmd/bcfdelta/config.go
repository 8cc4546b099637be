package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeyKind identifies how a persisted default flag value is parsed
// and validated by "bcfdelta config set".
type configKeyKind int

const (
	configKeyBool configKeyKind = iota
	configKeyInt
)

// configKeys whitelists the flags encode/decode actually read out of
// viper (see cmd/bcfdelta/encode.go, decode.go). "config set"/"config
// get" reject any other key rather than silently persisting a typo that
// no flag will ever look up.
var configKeys = map[string]configKeyKind{
	"delta-compress":   configKeyBool,
	"split-fields":     configKeyBool,
	"compress-ints":    configKeyBool,
	"compress-floats":  configKeyBool,
	"compress-chars":   configKeyBool,
	"skip-problematic": configKeyBool,
	"ref-freq":         configKeyInt,
	"threads":          configKeyInt,
}

// runConfig dispatches "bcfdelta config ..." to a cobra command tree so
// persisted defaults (ref-freq, threads, the compress-* switches) can be
// get/set/shown without re-implementing flag parsing for three verbs.
func runConfig(args []string) int {
	root := newConfigCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bcfdelta configuration",
		Long:  "Show, get, or set persisted default flag values. Config is stored in ~/.bcfdelta.yaml.",
		Example: `  bcfdelta config                     # show all config
  bcfdelta config set ref-freq 5000   # change the default anchor bucket width
  bcfdelta config get threads         # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
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
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.bcfdelta.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q (valid keys: %s)", key, validConfigKeys())
	}

	switch kind {
	case configKeyBool:
		b, err := parseConfigBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean (true/false/yes/no/on/off): %w", key, err)
		}
		viper.Set(key, b)
	case configKeyInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, err)
		}
		viper.Set(key, n)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".bcfdelta.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown key %q (valid keys: %s)", key, validConfigKeys())
	}

	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}

func parseConfigBool(value string) (bool, error) {
	switch value {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("got %q", value)
	}
}

func validConfigKeys() string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
