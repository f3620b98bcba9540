/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-export/internal/termfmt"
	"github.com/toothbrush/wp-export/portable"
)

var listPagesUsage = strings.TrimSpace(`
Print every published page in menu order, with the file name it will be exported to.  Useful for
picking --pages.
`)

var listPostsUsage = strings.TrimSpace(`
Print every published post, newest first, with the file name it will be exported to.
`)

var listPagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print list of pages",
	Long:  listPagesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), portable.PageItem)
	},
}

var listPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Print list of posts",
	Long:  listPostsUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), portable.PostItem)
	},
}

func init() {
	listCmd.AddCommand(listPagesCmd)
	listCmd.AddCommand(listPostsCmd)
}

func runList(ctx context.Context, kind portable.ItemKind) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// reading settings needs an administrator, like exporting does
	api, stop, err := newAPI(true)
	if err != nil {
		return err
	}
	defer stop()

	log.Printf("Listing %ss on %s...\n", kind, SiteURL)
	inv, err := portable.NewWordPressSource(api).Inventory(ctx)
	if err != nil {
		return fmt.Errorf("list: couldn't take inventory: %w", err)
	}

	cfg := portable.Config{SiteURL: SiteURL, HomeURL: HomeURL}.WithDefaults()
	links := portable.BuildLinkMap(cfg.HomeURL, inv)

	items := inv.Pages
	if kind == portable.PostItem {
		items = inv.Posts
	}
	log.Printf("Found %d %ss.\n", len(items), kind)

	fmt.Printf("%ss:\n", kind)
	for _, item := range items {
		file, _ := links.Lookup(item.URL)
		note := ""
		if inv.FrontPageID != 0 && item.ID == inv.FrontPageID {
			note = termfmt.Fg(termfmt.Cyan).V(" (front page)").String()
		}
		fmt.Printf("  - %d: %s -> %s%s\n", item.ID, item.Title, termfmt.Bold().V(file), note)
	}

	for _, c := range links.Collisions() {
		fmt.Printf("%s %s\n", termfmt.Fg(termfmt.Yellow).V("warning: file name shared, last one wins:"), c)
	}

	return nil
}
