package wordpress

import "html"

// Content is the subset of a page or post object we care about:
// https://developer.wordpress.org/rest-api/reference/pages/#schema
type Content struct {
	ID        int      `json:"id"`
	Date      string   `json:"date,omitempty"`
	Slug      string   `json:"slug"`
	Status    string   `json:"status"` // publish, future, draft, pending, private
	Type      string   `json:"type"`   // page, post
	Link      string   `json:"link"`   // the permalink
	Title     Rendered `json:"title"`
	MenuOrder int      `json:"menu_order,omitempty"` // pages only
}

// PlainTitle returns the title with HTML entities decoded; WordPress hands out "&#8217;" and
// friends in title.rendered.
func (c Content) PlainTitle() string {
	return html.UnescapeString(c.Title.Rendered)
}

type Rendered struct {
	Rendered string `json:"rendered"`
}

// Settings is the reading-settings subset of:
// https://developer.wordpress.org/rest-api/reference/settings/
type Settings struct {
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	ShowOnFront string `json:"show_on_front"` // "posts" or "page"
	PageOnFront int    `json:"page_on_front"`
}

// FrontPageID returns the static front page, if the site has one configured. A site showing
// its latest posts on the home page has no front page, even if page_on_front is still set.
func (s Settings) FrontPageID() (int, bool) {
	if s.ShowOnFront != "page" || s.PageOnFront < 1 {
		return 0, false
	}
	return s.PageOnFront, true
}

// User is the current-user object from wp/v2/users/me.
type User struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Capabilities map[string]bool `json:"capabilities,omitempty"`
}

func (u User) Can(capability string) bool {
	return u.Capabilities[capability]
}

// Inventory is everything that is addressable on the site, fetched in one go.
type Inventory struct {
	Pages    []Content
	Posts    []Content
	Settings Settings
}

// Document is a fully rendered front-end page, as a visitor would receive it.
type Document struct {
	URL   string
	HTML  string
	Title string
}

type ContentType int

const (
	PageContent ContentType = iota
	PostContent
)

func (c ContentType) String() string {
	switch c {
	case PostContent:
		return "post"
	default:
		return "page"
	}
}

func (c ContentType) collection() string {
	switch c {
	case PostContent:
		return "posts"
	default:
		return "pages"
	}
}
