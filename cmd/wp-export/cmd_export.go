/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-export/internal/termfmt"
	"github.com/toothbrush/wp-export/portable"
)

var exportUsage = strings.TrimSpace(`
Render the home page and every selected page (and optionally every post), rewrite them into
self-contained HTML with local copies of their stylesheets, scripts and images, and pack the lot
into ZIP archives in the export directory.  A page that fails to export is reported and skipped.
`)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the site into portable ZIP archives",
	Long:  exportUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		return runExport(ctx)
	},
}

var (
	DocumentRoot   string
	ExportDir      string
	CopyAssets     bool
	SplitArchives  bool
	IncludePosts   bool
	Pages          []int
	ArchiveCeiling int64
	Derate         float64
	MaxAssetSize   int64
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&DocumentRoot, "document-root", "", "directory the site is served from, to copy assets out of")
	exportCmd.Flags().StringVar(&ExportDir, "export-dir", "", "where to write documents, assets and archives")
	exportCmd.Flags().BoolVar(&CopyAssets, "copy-assets", true, "copy local stylesheets, scripts and images into the export")
	exportCmd.Flags().BoolVar(&SplitArchives, "split-archives", false, "split archives to stay under --archive-ceiling")
	exportCmd.Flags().BoolVar(&IncludePosts, "include-posts", false, "export posts as well as pages")
	exportCmd.Flags().IntSliceVar(&Pages, "pages", []int{}, "page IDs to export (default: all published pages)")
	exportCmd.Flags().Int64Var(&ArchiveCeiling, "archive-ceiling", portable.DefaultArchiveCeiling, "estimated bytes per archive when splitting")
	exportCmd.Flags().Float64Var(&Derate, "derate", portable.DefaultDerate, "expected compressed/raw size ratio used to estimate archive sizes")
	exportCmd.Flags().Int64Var(&MaxAssetSize, "max-asset-size", portable.DefaultMaxAssetSize, "largest asset file to copy, in bytes")
}

func exportConfig() (portable.Config, error) {
	exportDir, err := homedir.Expand(ExportDir)
	if err != nil {
		return portable.Config{}, fmt.Errorf("export: couldn't expand homedir: %w", err)
	}
	docRoot, err := homedir.Expand(DocumentRoot)
	if err != nil {
		return portable.Config{}, fmt.Errorf("export: couldn't expand homedir: %w", err)
	}

	cfg := portable.Config{
		SiteURL:        SiteURL,
		HomeURL:        HomeURL,
		DocumentRoot:   docRoot,
		ExportDir:      exportDir,
		MaxAssetSize:   MaxAssetSize,
		ArchiveCeiling: ArchiveCeiling,
		Derate:         Derate,
	}.WithDefaults()

	if err := cfg.Validate(CopyAssets); err != nil {
		return portable.Config{}, err
	}
	return cfg, nil
}

func runExport(ctx context.Context) error {
	cfg, err := exportConfig()
	if err != nil {
		return fmt.Errorf("export: bad configuration: %w", err)
	}

	api, stop, err := newAPI(true)
	if err != nil {
		return err
	}
	defer stop()

	// the progress bar and log lines don't mix; debug mode gets the log lines
	logger := log.New(io.Discard, "", 0)
	var progress io.Writer = os.Stderr
	if Debug {
		logger = log.New(os.Stderr, "[wp-export] ", log.LstdFlags)
		progress = nil
	}

	exporter, err := portable.NewExporter(cfg, portable.NewWordPressSource(api), logger)
	if err != nil {
		return fmt.Errorf("export: couldn't set up exporter: %w", err)
	}

	debugLog("Exporting %s into %s (copy assets: %v, split: %v)\n", cfg.SiteURL, cfg.ExportDir, CopyAssets, SplitArchives)
	report, err := exporter.Run(ctx, portable.RunOptions{
		PageIDs:      Pages,
		IncludePosts: IncludePosts,
		CopyAssets:   CopyAssets,
		Split:        SplitArchives,
		Progress:     progress,
	})
	if report != nil {
		printReport(report, cfg.ExportDir)
	}
	if err != nil {
		if errors.Is(err, portable.ErrNotPermitted) {
			return fmt.Errorf("export: %w (the user needs to be an administrator)", err)
		}
		return fmt.Errorf("export: %w", err)
	}

	return nil
}

func printReport(report *portable.RunReport, exportDir string) {
	ok := termfmt.Fg(termfmt.Green)
	bad := termfmt.Fg(termfmt.Red)

	fmt.Println()
	if report.Home != nil {
		fmt.Printf("%s %s\n", ok.V("✓"), report.Home.Filename)
	}
	for _, item := range report.Exported {
		fmt.Printf("%s %s %s\n", ok.V("✓"), item.Filename, termfmt.Faint().V(item.Title))
	}
	for _, f := range report.Failures {
		what := "home page"
		if f.ID != 0 {
			what = fmt.Sprintf("item %d", f.ID)
		}
		fmt.Printf("%s %s: %v\n", bad.V("✗"), what, f.Err)
	}

	exported := len(report.Exported)
	if report.Home != nil {
		exported++
	}
	fmt.Printf("\n%s documents exported, %s failed.\n",
		termfmt.Bold().V(exported),
		termfmt.Bold().V(len(report.Failures)))

	if report.Archives == nil {
		return
	}
	fmt.Printf("Archives in %s:\n", exportDir)
	for _, a := range report.Archives.Archives() {
		fmt.Printf("  - %s\n", termfmt.Bold().V(a))
	}
	fmt.Printf("Instructions are in %s.\n", portable.ReadmeFilename)
}
