package wordpress

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("wordpress: not authorised")
	ErrNotFound     = errors.New("wordpress: not found")
)

// UserAgent is sent with every request, including front-end page renders.
const UserAgent = "WordPress/Export"

func NewAPI(siteURL string, username string, password string) (*API, error) {
	if siteURL == "" {
		return nil, fmt.Errorf("wordpress: configure your site URL with --site-url")
	}

	u, err := url.ParseRequestURI(strings.TrimRight(siteURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse site URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("wordpress: site URL must be http or https, got %q", u.Scheme)
	}

	a := &API{
		BaseURI:  u,
		username: username,
		password: password,
	}
	a.Client = &http.Client{Timeout: 30 * time.Second}

	return a, nil
}

type API struct {
	// Root of the WordPress install, e.g. https://example.com or https://example.com/blog
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Application password credentials; optional for read-only listing of public content.
	username, password string
}
