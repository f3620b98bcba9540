package wordpress

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Render fetches a front-end URL the way a visitor's browser would, returning the complete HTML
// document. The theme does all the work; we only look at the <title>.
func (api *API) Render(ctx context.Context, pageURL string) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse page URL %q: %w", pageURL, err)
	}
	if !u.IsAbs() {
		u = api.BaseURI.ResolveReference(u)
	}

	body, _, err := api.do(ctx, u, "text/html,application/xhtml+xml", false)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't render %s: %w", u, err)
	}

	doc := &Document{
		URL:  u.String(),
		HTML: string(body),
	}

	// A document goquery can't make sense of still gets returned; callers decide whether the
	// markup is good enough.
	if parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML)); err == nil {
		doc.Title = strings.TrimSpace(parsed.Find("head title").First().Text())
	}

	return doc, nil
}
