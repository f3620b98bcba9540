package portable

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type ItemKind string

const (
	PageItem ItemKind = "page"
	PostItem ItemKind = "post"
)

const statusPublish = "publish"

// ContentItem is one exportable page or post.
type ContentItem struct {
	ID     int
	Kind   ItemKind
	Title  string
	Slug   string
	URL    string // canonical permalink
	Status string
}

func (i ContentItem) Published() bool {
	return i.Status == statusPublish
}

// OutputName is the document filename: the explicit slug if the item has one, the slugified
// title otherwise.
func (i ContentItem) OutputName() string {
	slug := i.Slug
	if strings.ContainsAny(slug, `/\`) || strings.HasPrefix(slug, ".") {
		// not something we want to use as a file name as-is
		slug = slugify(slug)
	}
	if slug == "" {
		slug = slugify(i.Title)
	}
	if slug == "" {
		slug = fmt.Sprintf("%s-%d", i.Kind, i.ID)
	}
	return slug + ".html"
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
)

// slugify approximates WordPress' sanitize_title: accents are folded, everything else that
// isn't a letter, digit, underscore or dash becomes a dash.
func slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	str := strings.ToLower(folded)
	str = nonSlugChars.ReplaceAllString(str, " ")
	str = strings.Join(strings.Fields(str), "-")
	str = dashRuns.ReplaceAllString(str, "-")

	if len(str) > 200 {
		str = str[:200]
	}

	return strings.Trim(str, "-")
}
