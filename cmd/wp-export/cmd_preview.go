/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-export/internal/termfmt"
	"github.com/toothbrush/wp-export/portable"
)

var previewUsage = strings.TrimSpace(`
Render one page or post, rewrite it the way export would (without copying assets or writing
anything), and print the main content as Markdown.  Handy for checking that links come out
relative before running a full export.
`)

var previewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Show how one page or post would be exported",
	Long:  previewUsage,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id < 1 {
			return fmt.Errorf("preview: %q is not a page or post ID", args[0])
		}
		return runPreview(cmd.Context(), id)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(ctx context.Context, id int) error {
	api, stop, err := newAPI(true)
	if err != nil {
		return err
	}
	defer stop()

	// preview never writes, so the export directory is a placeholder
	cfg := portable.Config{SiteURL: SiteURL, HomeURL: HomeURL, ExportDir: "."}.WithDefaults()
	src := portable.NewWordPressSource(api)
	if err := src.Authorize(ctx); err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	inv, err := src.Inventory(ctx)
	if err != nil {
		return fmt.Errorf("preview: couldn't take inventory: %w", err)
	}
	item, err := src.Item(ctx, id)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	doc, err := src.Render(ctx, item.URL)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	links := portable.BuildLinkMap(cfg.HomeURL, inv)
	html := portable.NewPortabilizer(cfg, links, nil, nil).Portabilize(doc.HTML, false)

	markdown, err := toMarkdown(html)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	file, ok := links.Lookup(item.URL)
	if !ok {
		file = item.OutputName()
	}
	if inv.FrontPageID == id {
		file = portable.HomeFilename
	}

	log.Printf("%s %d renders %d bytes of HTML.\n", item.Kind, id, len(doc.HTML))
	fmt.Printf("%s -> %s\n\n", termfmt.Bold().V(item.Title), termfmt.Bold().Fg(termfmt.Green).V(file))
	fmt.Println(markdown)
	return nil
}

// toMarkdown converts the main content of a document; themes wrap it in <main> or <article> and
// the rest is navigation chrome.
func toMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("couldn't parse document: %w", err)
	}

	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("article").First()
	}
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("couldn't extract content: %w", err)
	}

	// No domain: the links are relative by now and should stay that way.
	converter := md.NewConverter("", true, nil)
	// Github flavoured Markdown knows about tables 👍
	converter.Use(mdplugin.GitHubFlavored())

	markdown, err := converter.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("couldn't convert to Markdown: %w", err)
	}
	return markdown, nil
}
