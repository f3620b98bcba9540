package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPI(t *testing.T) {
	api, err := NewAPI("https://example.com/blog/", "me", "secret")
	require.NoError(t, err)
	assert.Equal(t, "/blog", api.BaseURI.Path)

	_, err = NewAPI("", "", "")
	assert.Error(t, err)
	_, err = NewAPI("ftp://example.com", "", "")
	assert.Error(t, err)
	_, err = NewAPI("example.com", "", "")
	assert.Error(t, err)
}

func TestEndpoints(t *testing.T) {
	api, err := NewAPI("https://example.com/blog", "", "")
	require.NoError(t, err)

	ep, err := api.listContentEndpoint(PageContent, ListContentQuery{
		Status:  []string{"publish", "private"},
		OrderBy: "menu_order",
		Order:   "asc",
		Page:    2,
		PerPage: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/wp-json/wp/v2/pages?order=asc&orderby=menu_order&page=2&per_page=100&status=publish%2Cprivate", ep.String())

	ep, err = api.getContentByIDEndpoint(PostContent, GetContentByIDQuery{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/wp-json/wp/v2/posts/42", ep.String())

	_, err = api.getContentByIDEndpoint(PostContent, GetContentByIDQuery{})
	assert.Error(t, err)

	ep, err = api.getCurrentUserEndpoint(CurrentUserQuery{Context: "edit"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/wp-json/wp/v2/users/me?context=edit", ep.String())

	ep, err = api.getSettingsEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/wp-json/wp/v2/settings", ep.String())
}

// fakeWordPress serves n pages, two to a response page, plus whatever extra routes the test adds.
type fakeWordPress struct {
	mu       sync.Mutex
	requests []*http.Request
	mux      *http.ServeMux
}

func newFakeWordPress(t *testing.T, pages int) (*fakeWordPress, *API) {
	t.Helper()
	fake := &fakeWordPress{mux: http.NewServeMux()}

	fake.mux.HandleFunc("/wp-json/wp/v2/pages", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		total := (pages + 1) / 2
		w.Header().Set("X-WP-TotalPages", strconv.Itoa(total))

		fmt.Fprint(w, "[")
		for i := 0; i < 2; i++ {
			id := (page-1)*2 + i + 1
			if id > pages {
				break
			}
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id": %d, "slug": "page-%d", "status": "publish", "type": "page", "link": "https://example.com/page-%d/", "title": {"rendered": "Page %d"}, "menu_order": %d}`, id, id, id, id, id)
		}
		fmt.Fprint(w, "]")
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.requests = append(fake.requests, r)
		fake.mu.Unlock()
		fake.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	api, err := NewAPI(srv.URL, "admin", "app password")
	require.NoError(t, err)
	return fake, api
}

func TestListAllPagesPaginates(t *testing.T) {
	fake, api := newFakeWordPress(t, 5)

	pages, err := api.ListAllPages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 5)
	for i, p := range pages {
		assert.Equal(t, i+1, p.ID)
	}

	require.Len(t, fake.requests, 3)
	q := fake.requests[0].URL.Query()
	assert.Equal(t, "publish", q.Get("status"))
	assert.Equal(t, "menu_order", q.Get("orderby"))
	assert.Equal(t, "100", q.Get("per_page"))
	assert.Equal(t, UserAgent, fake.requests[0].Header.Get("User-Agent"))

	user, pass, ok := fake.requests[0].BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "app password", pass)
}

func TestStatusMapping(t *testing.T) {
	fake, api := newFakeWordPress(t, 0)
	for _, code := range []int{401, 403, 404, 410, 500, 502, 503} {
		code := code
		fake.mux.HandleFunc(fmt.Sprintf("/wp-json/wp/v2/posts/%d", code), func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
	}

	get := func(code int) error {
		_, err := api.GetContentByID(context.Background(), PostContent, GetContentByIDQuery{ID: code})
		return err
	}

	assert.ErrorIs(t, get(401), ErrUnauthorized)
	assert.ErrorIs(t, get(403), ErrUnauthorized)
	assert.ErrorIs(t, get(404), ErrNotFound)
	assert.ErrorIs(t, get(410), ErrNotFound)
	for _, code := range []int{500, 502, 503} {
		err := get(code)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	}
}

func TestGetItemFallsBackToPosts(t *testing.T) {
	fake, api := newFakeWordPress(t, 0)
	fake.mux.HandleFunc("/wp-json/wp/v2/posts/12", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 12, "slug": "news", "status": "publish", "type": "post", "link": "https://example.com/news/", "title": {"rendered": "News &#8211; today"}}`)
	})

	item, err := api.GetItem(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "post", item.Type)
	assert.Equal(t, "News – today", item.PlainTitle())

	_, err = api.GetItem(context.Background(), 13)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInventory(t *testing.T) {
	fake, api := newFakeWordPress(t, 3)
	fake.mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "date", r.URL.Query().Get("orderby"))
		fmt.Fprint(w, `[]`)
	})
	fake.mux.HandleFunc("/wp-json/wp/v2/settings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "Example", "show_on_front": "posts", "page_on_front": 2}`)
	})

	inv, err := api.Inventory(context.Background())
	require.NoError(t, err)
	assert.Len(t, inv.Pages, 3)
	assert.Empty(t, inv.Posts)

	// page_on_front is stale when the home page shows posts
	_, ok := inv.Settings.FrontPageID()
	assert.False(t, ok)

	_, ok = Settings{ShowOnFront: "page", PageOnFront: 2}.FrontPageID()
	assert.True(t, ok)
}

func TestInventoryFailsAsAWhole(t *testing.T) {
	fake, api := newFakeWordPress(t, 1)
	fake.mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	// no settings route: 404

	_, err := api.Inventory(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentUser(t *testing.T) {
	fake, api := newFakeWordPress(t, 0)
	fake.mux.HandleFunc("/wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "edit", r.URL.Query().Get("context"))
		fmt.Fprint(w, `{"id": 1, "name": "Admin", "slug": "admin", "capabilities": {"manage_options": true}}`)
	})

	user, err := api.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.True(t, user.Can("manage_options"))
	assert.False(t, user.Can("unfiltered_html"))
}

func TestRenderIsAnonymous(t *testing.T) {
	fake, api := newFakeWordPress(t, 0)
	fake.mux.HandleFunc("/about/", func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		fmt.Fprint(w, `<!DOCTYPE html><html><head><title> About &amp; more </title></head><body>hi</body></html>`)
	})

	doc, err := api.Render(context.Background(), "/about/")
	require.NoError(t, err)
	assert.Equal(t, "About & more", doc.Title)
	assert.Contains(t, doc.HTML, "<body>hi</body>")
	assert.Equal(t, api.BaseURI.String()+"/about/", doc.URL)

	_, err = api.Render(context.Background(), "/missing/")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTotalPages(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, 1, totalPages(h))
	h.Set("X-WP-TotalPages", "junk")
	assert.Equal(t, 1, totalPages(h))
	h.Set("X-WP-TotalPages", "7")
	assert.Equal(t, 7, totalPages(h))
}
