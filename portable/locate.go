package portable

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Locator resolves asset references found in markup to files under the document root.
type Locator struct {
	site         *url.URL
	siteBase     string // site URL without trailing slash
	documentRoot string
	maxSize      int64
}

func NewLocator(cfg Config) (*Locator, error) {
	site, err := url.Parse(cfg.SiteURL)
	if err != nil {
		return nil, err
	}
	return &Locator{
		site:         site,
		siteBase:     strings.TrimRight(cfg.SiteURL, "/"),
		documentRoot: cfg.DocumentRoot,
		maxSize:      cfg.MaxAssetSize,
	}, nil
}

// Normalize turns a reference into an absolute URL. Protocol-relative references get https,
// root-relative ones the site's scheme and host, and anything else is taken relative to the site.
func (l *Locator) Normalize(ref string) string {
	switch {
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return l.site.Scheme + "://" + l.site.Host + ref
	case hasScheme(ref):
		return ref
	default:
		return l.siteBase + "/" + strings.TrimLeft(ref, "./")
	}
}

func hasScheme(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

// IsExternal reports whether ref is an absolute http(s) URL on some other host.
func (l *Locator) IsExternal(ref string) bool {
	u, err := url.Parse(l.Normalize(ref))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !strings.EqualFold(u.Host, l.site.Host)
}

// Locate returns the local file a reference points at, provided it is on this site, inside the
// document root, a regular readable file and no bigger than the asset ceiling.
func (l *Locator) Locate(ref string) (string, bool) {
	if l.documentRoot == "" {
		return "", false
	}

	u, err := url.Parse(l.Normalize(ref))
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || !strings.EqualFold(u.Host, l.site.Host) {
		return "", false
	}

	// u.Path has the query and fragment stripped already.
	rel := u.Path
	if sitePath := strings.TrimRight(l.site.Path, "/"); sitePath != "" {
		if rel != sitePath && !strings.HasPrefix(rel, sitePath+"/") {
			return "", false
		}
		rel = rel[len(sitePath):]
	}

	rel = path.Clean("/" + rel)
	if rel == "/" {
		return "", false
	}

	local := filepath.Join(l.documentRoot, filepath.FromSlash(rel))

	info, err := os.Stat(local)
	if err != nil || !info.Mode().IsRegular() || info.Size() > l.maxSize {
		return "", false
	}

	f, err := os.Open(local)
	if err != nil {
		return "", false
	}
	f.Close()

	return local, true
}
