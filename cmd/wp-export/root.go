/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const defaultConfig = "~/.config/wp-export.yaml"

var (
	// Store the result of binding cobra flags
	Config string
	Debug  bool

	// Command to run to retrieve a WordPress application password
	AuthPasswordCmd []string

	AuthUsername string
	SiteURL      string
	HomeURL      string
	WithVCR      bool

	ParsedConfig YamlConfig
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "wp-export",
	Short: "Export a WordPress site as portable static HTML",
	Long: `
Want to move a WordPress site somewhere PHP doesn't run, or just keep a copy that opens from disk?
This tool renders every published page and post the way a visitor sees them, rewrites links and
assets so the result is self-contained, and packs it into ZIP archives small enough for picky hosts.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// You can bind cobra and a config file in a few locations, but PersistentPreRunE on the root command works well
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("wp-export: failed to initialise config: %w", err)
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: ~/.config/wp-export.yaml, respects WP_EXPORT_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().StringSliceVar(&AuthPasswordCmd, "auth-password-cmd", []string{}, "shell command to retrieve a WordPress application password")
	rootCmd.PersistentFlags().StringVar(&AuthUsername, "auth-username", "", "your WordPress username")
	rootCmd.PersistentFlags().StringVar(&SiteURL, "site-url", "", "the WordPress site URL, e.g. https://example.com or https://example.com/blog")
	rootCmd.PersistentFlags().StringVar(&HomeURL, "home-url", "", "the public home page (default: site URL)")
	rootCmd.PersistentFlags().BoolVar(&WithVCR, "with-vcr", false, "use go-vcr to cache responses")
}

func initializeConfig(cmd *cobra.Command) error {
	explicit := Config != ""
	if Config == "" {
		// Did the user provide an ENV?
		envConfig := os.Getenv("WP_EXPORT_CONFIG")
		if envConfig != "" {
			Config = envConfig
			explicit = true
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = defaultConfig
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("wp-export: unable to expand homedir: %w", err)
	}
	Config = config

	if _, err := os.Stat(Config); errors.Is(err, os.ErrNotExist) {
		if explicit {
			fmt.Printf("Couldn't read config file %s, does it exist?\n", Config)
			return fmt.Errorf("wp-export: specified config file does not exist: %w", err)
		}
		// no config at the default location is fine, flags alone will do
		debugLog("No config file at %s, using flags only.\n", Config)
		return nil
	}

	yamlFile, err := os.ReadFile(Config)
	if err != nil {
		return fmt.Errorf("wp-export: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("wp-export: issue parsing config file: %w", err)
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("wp-export: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	WithVCR       *bool `yaml:"with-vcr"`
	CopyAssets    *bool `yaml:"copy-assets"`
	SplitArchives *bool `yaml:"split-archives"`
	IncludePosts  *bool `yaml:"include-posts"`

	ArchiveCeiling *int64   `yaml:"archive-ceiling"`
	MaxAssetSize   *int64   `yaml:"max-asset-size"`
	Derate         *float64 `yaml:"derate"`

	SiteURL         string   `yaml:"site-url"`
	HomeURL         string   `yaml:"home-url"`
	AuthUsername    string   `yaml:"auth-username"`
	AuthPasswordCmd []string `yaml:"auth-password-cmd"`
	DocumentRoot    string   `yaml:"document-root"`
	ExportDir       string   `yaml:"export-dir"`
	Pages           []int    `yaml:"pages"`
}

// Set each cobra flag the user didn't pass from its counterpart in the config file.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("wp-export: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// the flag is unknown, which is fine: `list pages` has no `export-dir` flag but your
			// YAML file may well define it.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		var values []string
		switch field.Kind() {
		case reflect.Ptr:
			switch p := field.Value().(type) {
			case *bool:
				if p != nil {
					values = append(values, fmt.Sprintf("%v", *p))
				}
			case *int64:
				if p != nil {
					values = append(values, fmt.Sprintf("%d", *p))
				}
			case *float64:
				if p != nil {
					values = append(values, fmt.Sprintf("%v", *p))
				}
			default:
				return fmt.Errorf("wp-export: found unrecognised field: %+v", field)
			}

		case reflect.String:
			if s := field.Value().(string); s != "" {
				values = append(values, s)
			}

		case reflect.Slice:
			switch ss := field.Value().(type) {
			case []string:
				values = append(values, ss...)
			case []int:
				for _, i := range ss {
					values = append(values, fmt.Sprintf("%d", i))
				}
			default:
				return fmt.Errorf("wp-export: found unrecognised field: %+v", field)
			}

		default:
			return fmt.Errorf("wp-export: found unrecognised field: %+v", field)
		}

		for _, s := range values {
			// yes, repeatedly calling Set() appends to slices...
			if err := cmd.Flags().Set(key, s); err != nil {
				return fmt.Errorf("wp-export: bad value for %s in config file: %w", key, err)
			}
		}
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("wp-export: execution error: %w", err)
	}

	return nil
}
