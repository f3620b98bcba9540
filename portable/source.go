package portable

import (
	"context"
	"errors"
	"fmt"

	"github.com/toothbrush/wp-export/wordpress"
)

// RequiredCapability is what a user needs to be allowed to export the whole site.
const RequiredCapability = "manage_options"

// Inventory is the site's addressable content at the start of an export.
type Inventory struct {
	Pages []ContentItem // in display order
	Posts []ContentItem
	// FrontPageID is zero when the home page shows the latest posts.
	FrontPageID int
}

type RenderedDocument struct {
	HTML  string
	Title string
}

// Source is everything the exporter needs from the site it exports.
type Source interface {
	// Authorize returns an error wrapping ErrNotPermitted if the caller may not export.
	Authorize(ctx context.Context) error
	Inventory(ctx context.Context) (*Inventory, error)
	Item(ctx context.Context, id int) (ContentItem, error)
	Render(ctx context.Context, url string) (RenderedDocument, error)
}

// WordPressSource reads content through the WordPress REST API and renders it over the public
// front end.
type WordPressSource struct {
	api *wordpress.API
}

func NewWordPressSource(api *wordpress.API) *WordPressSource {
	return &WordPressSource{api: api}
}

func (s *WordPressSource) Authorize(ctx context.Context) error {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, wordpress.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", ErrNotPermitted, err)
		}
		return fmt.Errorf("portable: couldn't look up current user: %w", err)
	}
	if !user.Can(RequiredCapability) {
		return fmt.Errorf("%w: user %q lacks the %s capability", ErrNotPermitted, user.Slug, RequiredCapability)
	}
	return nil
}

func (s *WordPressSource) Inventory(ctx context.Context) (*Inventory, error) {
	wpInv, err := s.api.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("portable: couldn't fetch inventory: %w", err)
	}

	inv := &Inventory{
		Pages: make([]ContentItem, 0, len(wpInv.Pages)),
		Posts: make([]ContentItem, 0, len(wpInv.Posts)),
	}
	for _, p := range wpInv.Pages {
		inv.Pages = append(inv.Pages, fromWordPress(p))
	}
	for _, p := range wpInv.Posts {
		inv.Posts = append(inv.Posts, fromWordPress(p))
	}
	if id, ok := wpInv.Settings.FrontPageID(); ok {
		inv.FrontPageID = id
	}

	return inv, nil
}

func (s *WordPressSource) Item(ctx context.Context, id int) (ContentItem, error) {
	c, err := s.api.GetItem(ctx, id)
	if err != nil {
		return ContentItem{}, fmt.Errorf("portable: couldn't get item %d: %w", id, err)
	}
	return fromWordPress(*c), nil
}

func (s *WordPressSource) Render(ctx context.Context, url string) (RenderedDocument, error) {
	doc, err := s.api.Render(ctx, url)
	if err != nil {
		return RenderedDocument{}, err
	}
	return RenderedDocument{HTML: doc.HTML, Title: doc.Title}, nil
}

func fromWordPress(c wordpress.Content) ContentItem {
	kind := PageItem
	if c.Type == "post" {
		kind = PostItem
	}
	return ContentItem{
		ID:     c.ID,
		Kind:   kind,
		Title:  c.PlainTitle(),
		Slug:   c.Slug,
		URL:    c.Link,
		Status: c.Status,
	}
}
