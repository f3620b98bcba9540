package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func (api *API) GetContentByID(ctx context.Context, ct ContentType, opts GetContentByIDQuery) (*Content, error) {
	ep, err := api.getContentByIDEndpoint(ct, opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get single %s endpoint: %w", ct, err)
	}

	body, _, err := api.request(ctx, ep, "application/json")
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var content Content
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return &content, nil
}

// GetItem looks an ID up as a page first and then as a post. WordPress IDs are unique across
// both, so at most one of them answers.
func (api *API) GetItem(ctx context.Context, id int) (*Content, error) {
	page, err := api.GetContentByID(ctx, PageContent, GetContentByIDQuery{ID: id})
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	post, err := api.GetContentByID(ctx, PostContent, GetContentByIDQuery{ID: id})
	if err != nil {
		return nil, fmt.Errorf("wordpress: no page or post with ID %d: %w", id, err)
	}
	return post, nil
}

func (api *API) listContentPage(ctx context.Context, ct ContentType, opts ListContentQuery) ([]Content, int, error) {
	ep, err := api.listContentEndpoint(ct, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("wordpress: couldn't get %s list endpoint: %w", ct, err)
	}

	body, header, err := api.request(ctx, ep, "application/json")
	if err != nil {
		return nil, 0, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var items []Content
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, 0, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return items, totalPages(header), nil
}

func (api *API) GetSettings(ctx context.Context) (*Settings, error) {
	ep, err := api.getSettingsEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get settings endpoint: %w", err)
	}

	body, _, err := api.request(ctx, ep, "application/json")
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform request: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return &settings, nil
}

// CurrentUser returns the authenticated user, including capabilities.
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint(CurrentUserQuery{Context: "edit"})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get current user endpoint: %w", err)
	}

	body, _, err := api.request(ctx, ep, "application/json")
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't perform http request: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}

	return &user, nil
}

func (api *API) request(ctx context.Context, url *url.URL, accept string) ([]byte, http.Header, error) {
	return api.do(ctx, url, accept, true)
}

// do performs a GET.  Front-end renders go out without credentials so the theme serves exactly
// what an anonymous visitor sees.
func (api *API) do(ctx context.Context, url *url.URL, accept string, authenticate bool) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("wordpress: couldn't instantiate http request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", UserAgent)

	if authenticate && api.username != "" && api.password != "" {
		req.SetBasicAuth(api.username, api.password)
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("wordpress: couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		response.Body.Close()
		return nil, nil, fmt.Errorf("wordpress: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, nil, fmt.Errorf("wordpress: couldn't close response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNonAuthoritativeInfo:
		return body, response.Header, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil, fmt.Errorf("%w: %s: %s", ErrUnauthorized, response.Status, url.Path)
	case http.StatusNotFound, http.StatusGone:
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, url.String())
	case http.StatusServiceUnavailable:
		return nil, nil, fmt.Errorf("wordpress: service is not available: %s", response.Status)
	case http.StatusInternalServerError:
		return nil, nil, fmt.Errorf("wordpress: internal server error: %s", response.Status)
	}

	return nil, nil, fmt.Errorf("wordpress: unexpected HTTP response status: %s: %s", response.Status, url.String())
}
