package wordpress

import (
	"fmt"
	"net/url"
	"path"

	"github.com/google/go-querystring/query"
)

// listContentEndpoint returns the endpoint to list pages or posts:
// https://developer.wordpress.org/rest-api/reference/pages/#list-pages
func (a *API) listContentEndpoint(ct ContentType, opts ListContentQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("wp/v2/" + ct.collection())
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getContentByIDEndpoint returns the endpoint to retrieve one page or post:
// https://developer.wordpress.org/rest-api/reference/posts/#retrieve-a-post
func (a *API) getContentByIDEndpoint(ct ContentType, opts GetContentByIDQuery) (*url.URL, error) {
	if opts.ID < 1 {
		return nil, fmt.Errorf("wordpress: please provide ID to get %s by ID", ct)
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("wp/v2/%s/%d", ct.collection(), opts.ID))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getSettingsEndpoint returns the site settings endpoint, which needs manage_options:
// https://developer.wordpress.org/rest-api/reference/settings/
func (a *API) getSettingsEndpoint() (*url.URL, error) {
	return a.resolveEndpoint("wp/v2/settings")
}

// getCurrentUserEndpoint returns the endpoint to query the authenticated user:
// https://developer.wordpress.org/rest-api/reference/users/#retrieve-a-user-2
func (a *API) getCurrentUserEndpoint(opts CurrentUserQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("wp/v2/users/me")
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// Routes live under /wp-json relative to the install root, which may itself be a subdirectory.
func (a *API) resolveEndpoint(route string) (*url.URL, error) {
	ref, err := url.Parse(route)
	if err != nil {
		return nil, fmt.Errorf("wordpress: failed to parse endpoint ref: %w", err)
	}

	ep := *a.BaseURI
	ep.Path = path.Join("/", a.BaseURI.Path, "wp-json", ref.Path)
	ep.RawQuery = ""
	ep.Fragment = ""

	return &ep, nil
}
