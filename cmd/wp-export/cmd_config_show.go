/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.
`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Note, you can only talk about persistent flags here.  Command-specific ones won't be
		// visible.
		fmt.Printf("Dump current config state:\n\n")

		fmt.Printf("  Config file: %s\n", Config)
		fmt.Printf("  Debug: %v\n", Debug)
		fmt.Println()

		parsed, err := yaml.Marshal(ParsedConfig)
		if err != nil {
			return fmt.Errorf("config show: couldn't marshal parsed config: %w", err)
		}
		fmt.Printf("  Parsed YAML:\n%s\n", parsed)

		fmt.Printf("  SiteURL: %s\n", SiteURL)
		fmt.Printf("  HomeURL: %s\n", HomeURL)
		fmt.Printf("  AuthUsername: %s\n", AuthUsername)
		fmt.Printf("  AuthPasswordCmd: %v\n", AuthPasswordCmd)
		fmt.Printf("  WithVCR: %v\n", WithVCR)

		return nil
	},
}

func init() {
	configCmd.AddCommand(showCmd)
}
