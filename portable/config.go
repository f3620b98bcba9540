package portable

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	// HomeFilename is where the site's home page always ends up, whatever its slug.
	HomeFilename = "index.html"

	DefaultMaxAssetSize = 5 * 1024 * 1024
	// 8.5 MiB of estimated content keeps each finished archive under a 9 MB hosting limit.
	DefaultArchiveCeiling = 8912896
	// DefaultDerate is the expected compressed/raw ratio used when estimating archive sizes.
	DefaultDerate = 0.7
)

// Config is the immutable description of one export. It is built once and handed to every
// component; nothing in this package reads global state.
type Config struct {
	// SiteURL is the WordPress site URL, possibly with a subdirectory path. This is the string
	// that is erased from exported documents.
	SiteURL string
	// HomeURL is the public home page; defaults to SiteURL + "/".
	HomeURL string

	// DocumentRoot is the directory SiteURL is served from, used to find asset files.
	DocumentRoot string
	// ExportDir receives documents, assets/, archives and the manifest.
	ExportDir string

	MaxAssetSize   int64
	ArchiveCeiling int64
	Derate         float64
}

// WithDefaults fills in every zero-valued tunable.
func (c Config) WithDefaults() Config {
	c.SiteURL = strings.TrimRight(strings.TrimSpace(c.SiteURL), "/")
	if c.HomeURL == "" {
		c.HomeURL = c.SiteURL
	}
	c.HomeURL = withTrailingSlash(strings.TrimSpace(c.HomeURL))
	if c.MaxAssetSize == 0 {
		c.MaxAssetSize = DefaultMaxAssetSize
	}
	if c.ArchiveCeiling == 0 {
		c.ArchiveCeiling = DefaultArchiveCeiling
	}
	if c.Derate == 0 {
		c.Derate = DefaultDerate
	}
	return c
}

// Validate reports the first problem with the configuration. requireDocumentRoot is set when
// assets are going to be copied.
func (c Config) Validate(requireDocumentRoot bool) error {
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return fmt.Errorf("portable: couldn't parse site URL %q: %w", c.SiteURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("portable: site URL must be an absolute http(s) URL, got %q", c.SiteURL)
	}
	if _, err := url.Parse(c.HomeURL); err != nil {
		return fmt.Errorf("portable: couldn't parse home URL %q: %w", c.HomeURL, err)
	}
	if c.ExportDir == "" {
		return fmt.Errorf("portable: no export directory configured")
	}
	if requireDocumentRoot && c.DocumentRoot == "" {
		return fmt.Errorf("portable: copying assets needs a document root")
	}
	if c.Derate <= 0 || c.Derate > 1 {
		return fmt.Errorf("portable: derate factor must be in (0, 1], got %v", c.Derate)
	}
	if c.ArchiveCeiling < 0 {
		return fmt.Errorf("portable: archive ceiling must not be negative, got %d", c.ArchiveCeiling)
	}
	if c.MaxAssetSize <= 0 {
		return fmt.Errorf("portable: maximum asset size must be positive, got %d", c.MaxAssetSize)
	}
	return nil
}

func (c Config) AssetsDir() string {
	return filepath.Join(c.ExportDir, "assets")
}

// withTrailingSlash appends a slash to a URL path. URLs carrying a query or fragment are left
// alone.
func withTrailingSlash(url string) string {
	if url == "" || strings.HasSuffix(url, "/") || strings.ContainsAny(url, "?#") {
		return url
	}
	return url + "/"
}
