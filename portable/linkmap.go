package portable

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LinkMap maps canonical content URLs to output filenames. Entries keep their insertion order,
// which is the order links are rewritten in.
type LinkMap struct {
	order []string
	files map[string]string

	// filename -> every URL that was ever assigned to it, for collision reporting
	claimants map[string][]string
}

func NewLinkMap() *LinkMap {
	return &LinkMap{
		files:     make(map[string]string),
		claimants: make(map[string][]string),
	}
}

// Set maps url, and url without its trailing slash, to file. A URL that is already mapped keeps
// its position and takes the new filename.
func (m *LinkMap) Set(url, file string) {
	for _, spelling := range spellings(url) {
		if _, ok := m.files[spelling]; !ok {
			m.order = append(m.order, spelling)
		}
		m.files[spelling] = file
	}
	m.claimants[file] = append(m.claimants[file], strings.TrimRight(url, "/"))
}

func spellings(url string) []string {
	trimmed := strings.TrimRight(url, "/")
	if trimmed == url || trimmed == "" {
		return []string{url}
	}
	return []string{url, trimmed}
}

func (m *LinkMap) Lookup(url string) (string, bool) {
	f, ok := m.files[url]
	return f, ok
}

func (m *LinkMap) Len() int {
	return len(m.order)
}

// URLs returns every mapped spelling in insertion order.
func (m *LinkMap) URLs() []string {
	return slices.Clone(m.order)
}

// Files returns the distinct output filenames, sorted.
func (m *LinkMap) Files() []string {
	seen := make(map[string]struct{}, len(m.files))
	for _, f := range m.files {
		seen[f] = struct{}{}
	}
	files := maps.Keys(seen)
	sort.Strings(files)
	return files
}

// Collision is one output filename that more than one content URL was assigned to. Only the last
// assignment survives in the map.
type Collision struct {
	File string
	URLs []string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s <- %s", c.File, strings.Join(c.URLs, ", "))
}

// Collisions reports filenames claimed by several distinct URLs. The home file is expected to be
// claimed by the home URL and the front page, so it is never reported.
func (m *LinkMap) Collisions() []Collision {
	var out []Collision
	files := maps.Keys(m.claimants)
	sort.Strings(files)

	for _, f := range files {
		if f == HomeFilename {
			continue
		}
		urls := slices.Clone(m.claimants[f])
		sort.Strings(urls)
		urls = slices.Compact(urls)
		if len(urls) > 1 {
			out = append(out, Collision{File: f, URLs: urls})
		}
	}
	return out
}

// BuildLinkMap maps the home URL, every page and then every post. The front page is folded into
// the home file, so its permalink becomes a second spelling of home. When a page and a post share
// a URL the post, inserted later, wins.
func BuildLinkMap(homeURL string, inv *Inventory) *LinkMap {
	m := NewLinkMap()
	m.Set(withTrailingSlash(homeURL), HomeFilename)
	if inv == nil {
		return m
	}

	for _, p := range inv.Pages {
		if p.URL == "" {
			continue
		}
		if inv.FrontPageID != 0 && p.ID == inv.FrontPageID {
			m.Set(p.URL, HomeFilename)
			continue
		}
		m.Set(p.URL, p.OutputName())
	}

	for _, p := range inv.Posts {
		if p.URL == "" {
			continue
		}
		m.Set(p.URL, p.OutputName())
	}

	return m
}
