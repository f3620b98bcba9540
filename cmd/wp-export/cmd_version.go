/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return fmt.Errorf("version: could not read build info")
		}
		fmt.Printf("wp-export version %s (%s)\n", describeBuild(info), info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// describeBuild prefers the module version, which is set by "go install url/tool@version", and
// falls back to VCS stamping for local builds.
func describeBuild(info *debug.BuildInfo) string {
	var (
		revision string
		modified bool
		when     time.Time
	)
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			revision = kv.Value
		case "vcs.time":
			when, _ = time.Parse(time.RFC3339, kv.Value)
		case "vcs.modified":
			modified = kv.Value == "true"
		}
	}

	parts := []string{}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		parts = append(parts, v)
	}
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		parts = append(parts, "rev", revision)
		if modified {
			parts = append(parts, "dirty")
		}
	}
	if len(parts) == 0 {
		return "devel"
	}
	if !when.IsZero() {
		parts = append(parts, when.UTC().Format("2006-01-02"))
	}
	return strings.Join(parts, "-")
}
