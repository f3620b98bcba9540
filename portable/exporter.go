package portable

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const minDocumentSize = 100

// ExportedItem is one document written to the export root.
type ExportedItem struct {
	ID       int
	Filename string
	Title    string
}

// Exporter turns a site into a directory of portable documents and packs them into archives.
// One Exporter is one export run; it isn't safe for concurrent use, and neither is its export
// directory.
type Exporter struct {
	Config Config
	Source Source
	Logger *log.Logger
	Now    func() time.Time

	locator      *Locator
	copier       *Copier
	portabilizer *Portabilizer

	authorized bool
	inventory  *Inventory
	links      *LinkMap
}

func NewExporter(cfg Config, src Source, logger *log.Logger) (*Exporter, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(false); err != nil {
		return nil, err
	}

	locator, err := NewLocator(cfg)
	if err != nil {
		return nil, fmt.Errorf("portable: couldn't set up asset locator: %w", err)
	}

	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Exporter{
		Config:  cfg,
		Source:  src,
		Logger:  logger,
		Now:     time.Now,
		locator: locator,
		copier:  NewCopier(cfg.AssetsDir()),
	}, nil
}

// authorize checks permission once per run, before anything touches the export directory.
func (exporter *Exporter) authorize(ctx context.Context) error {
	if exporter.authorized {
		return nil
	}
	if err := exporter.Source.Authorize(ctx); err != nil {
		return err
	}
	exporter.authorized = true
	return nil
}

// prepare authorizes, takes the content inventory, builds the link map and creates the output
// directories. Only the first call does any work.
func (exporter *Exporter) prepare(ctx context.Context) error {
	if err := exporter.authorize(ctx); err != nil {
		return err
	}
	if exporter.links != nil {
		return nil
	}

	inv, err := exporter.Source.Inventory(ctx)
	if err != nil {
		return fmt.Errorf("portable: couldn't take inventory: %w", err)
	}

	links := BuildLinkMap(exporter.Config.HomeURL, inv)
	for _, c := range links.Collisions() {
		exporter.Logger.Printf("warning: several items share a file name, the last one wins: %s\n", c)
	}

	if err := exporter.prepareDirectories(); err != nil {
		return err
	}

	exporter.inventory = inv
	exporter.links = links
	exporter.portabilizer = NewPortabilizer(exporter.Config, links, exporter.locator, exporter.copier)
	return nil
}

func (exporter *Exporter) prepareDirectories() error {
	for _, kind := range AssetKinds {
		dir := filepath.Join(exporter.Config.AssetsDir(), string(kind))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("portable: couldn't create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Inventory returns the content inventory of this run, taking it if needed.
func (exporter *Exporter) Inventory(ctx context.Context) (*Inventory, error) {
	if err := exporter.prepare(ctx); err != nil {
		return nil, err
	}
	return exporter.inventory, nil
}

// LinkMap returns the link map of this run, building it if needed.
func (exporter *Exporter) LinkMap(ctx context.Context) (*LinkMap, error) {
	if err := exporter.prepare(ctx); err != nil {
		return nil, err
	}
	return exporter.links, nil
}

// ExportHome renders the home URL into index.html.
func (exporter *Exporter) ExportHome(ctx context.Context, copyAssets bool) (ExportedItem, error) {
	if err := exporter.prepare(ctx); err != nil {
		return ExportedItem{}, err
	}

	doc, err := exporter.render(ctx, exporter.Config.HomeURL)
	if err != nil {
		return ExportedItem{}, fmt.Errorf("portable: couldn't export home page: %w", err)
	}

	if err := exporter.writeDocument(HomeFilename, doc.HTML, copyAssets); err != nil {
		return ExportedItem{}, err
	}

	return ExportedItem{Filename: HomeFilename, Title: doc.Title}, nil
}

// BuildQueue returns the items to export after the home page: the given pages, minus the front
// page which ExportHome already covers, followed by every published post if includePosts is set.
func (exporter *Exporter) BuildQueue(ctx context.Context, pageIDs []int, includePosts bool) ([]int, error) {
	if err := exporter.prepare(ctx); err != nil {
		return nil, err
	}

	queue := make([]int, 0, len(pageIDs))
	for _, id := range pageIDs {
		if exporter.inventory.FrontPageID != 0 && id == exporter.inventory.FrontPageID {
			continue
		}
		queue = append(queue, id)
	}

	if includePosts {
		for _, p := range exporter.inventory.Posts {
			queue = append(queue, p.ID)
		}
	}

	return queue, nil
}

// ExportItem renders one published page or post into its document file. The front page always
// goes to index.html.
func (exporter *Exporter) ExportItem(ctx context.Context, id int, copyAssets bool) (ExportedItem, error) {
	if err := exporter.prepare(ctx); err != nil {
		return ExportedItem{}, err
	}

	item, err := exporter.Source.Item(ctx, id)
	if err != nil {
		return ExportedItem{}, fmt.Errorf("portable: couldn't look up item %d: %w", id, err)
	}
	if !item.Published() {
		return ExportedItem{}, fmt.Errorf("%w: %s %d has status %q", ErrNotPublished, item.Kind, id, item.Status)
	}

	filename := exporter.filenameFor(item)

	doc, err := exporter.render(ctx, item.URL)
	if err != nil {
		return ExportedItem{}, fmt.Errorf("portable: couldn't export %s %d: %w", item.Kind, id, err)
	}

	if err := exporter.writeDocument(filename, doc.HTML, copyAssets); err != nil {
		return ExportedItem{}, err
	}

	title := item.Title
	if title == "" {
		title = doc.Title
	}
	return ExportedItem{ID: id, Filename: filename, Title: title}, nil
}

// filenameFor agrees with the link map, so that links to the item resolve to the file we write.
func (exporter *Exporter) filenameFor(item ContentItem) string {
	if exporter.inventory.FrontPageID != 0 && item.ID == exporter.inventory.FrontPageID {
		return HomeFilename
	}
	if f, ok := exporter.links.Lookup(item.URL); ok {
		return f
	}
	return item.OutputName()
}

func (exporter *Exporter) render(ctx context.Context, url string) (RenderedDocument, error) {
	doc, err := exporter.Source.Render(ctx, url)
	if err != nil {
		return RenderedDocument{}, err
	}
	if err := validateDocument(doc.HTML); err != nil {
		return RenderedDocument{}, fmt.Errorf("%s: %w", url, err)
	}
	return doc, nil
}

// validateDocument rejects obviously broken renders: error pages with no markup, truncated
// responses and the like.
func validateDocument(html string) error {
	if len(html) < minDocumentSize {
		return fmt.Errorf("%w: only %d bytes", ErrInvalidDocument, len(html))
	}
	lower := strings.ToLower(html)
	if !strings.Contains(lower, "<html") || !strings.Contains(lower, "</html>") {
		return fmt.Errorf("%w: no html element", ErrInvalidDocument)
	}
	return nil
}

func (exporter *Exporter) writeDocument(filename, html string, copyAssets bool) error {
	out := exporter.portabilizer.Portabilize(html, copyAssets)

	dest := filepath.Join(exporter.Config.ExportDir, filename)
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
		return fmt.Errorf("portable: couldn't write %s: %w", dest, err)
	}
	return nil
}
