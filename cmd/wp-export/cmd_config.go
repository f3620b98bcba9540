/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var configUsage = strings.TrimSpace(`
Inspect how wp-export is configured.  Settings come from a YAML file (see 'config which') and
are overridden by any flag given on the command line.
`)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show where settings come from and what they resolve to",
	Long:  configUsage,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
