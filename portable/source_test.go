package portable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toothbrush/wp-export/wordpress"
)

func newWordPress(t *testing.T, user string) *WordPressSource {
	t.Helper()
	return newWordPressAs(t, user, "admin", "abcd efgh ijkl")
}

func newWordPressAs(t *testing.T, user, username, password string) *WordPressSource {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, user)
	})
	mux.HandleFunc("/wp-json/wp/v2/pages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-TotalPages", "1")
		fmt.Fprint(w, `[
			{"id": 7, "slug": "welcome", "status": "publish", "type": "page", "link": "https://mysite.example/welcome/", "title": {"rendered": "Welcome"}},
			{"id": 5, "slug": "about", "status": "publish", "type": "page", "link": "https://mysite.example/about/", "title": {"rendered": "About &amp; Us"}}
		]`)
	})
	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-TotalPages", "1")
		fmt.Fprint(w, `[{"id": 10, "slug": "hello-world", "status": "publish", "type": "post", "link": "https://mysite.example/hello-world/", "title": {"rendered": "Hello world!"}}]`)
	})
	mux.HandleFunc("/wp-json/wp/v2/settings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "My Site", "show_on_front": "page", "page_on_front": 7}`)
	})
	mux.HandleFunc("/wp-json/wp/v2/pages/10", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": "rest_post_invalid_id"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/wp-json/wp/v2/posts/10", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 10, "slug": "hello-world", "status": "publish", "type": "post", "link": "https://mysite.example/hello-world/", "title": {"rendered": "Hello world!"}}`)
	})
	mux.HandleFunc("/hello-world/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, document("Hello world! &#8211; My Site", "<p>hi</p>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api, err := wordpress.NewAPI(srv.URL, username, password)
	require.NoError(t, err)
	return NewWordPressSource(api)
}

const adminUser = `{"id": 1, "name": "Admin", "slug": "admin", "capabilities": {"manage_options": true, "edit_posts": true}}`

func TestWordPressSourceAuthorize(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, newWordPress(t, adminUser).Authorize(ctx))

	editor := `{"id": 2, "slug": "ed", "capabilities": {"edit_posts": true}}`
	assert.ErrorIs(t, newWordPress(t, editor).Authorize(ctx), ErrNotPermitted)

	// no credentials, no user
	err := newWordPressAs(t, adminUser, "", "").Authorize(ctx)
	assert.ErrorIs(t, err, ErrNotPermitted)
	assert.ErrorIs(t, err, wordpress.ErrUnauthorized)
}

func TestWordPressSourceInventory(t *testing.T) {
	inv, err := newWordPress(t, adminUser).Inventory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, inv.FrontPageID)
	require.Len(t, inv.Pages, 2)
	assert.Equal(t, ContentItem{
		ID: 5, Kind: PageItem, Title: "About & Us", Slug: "about",
		URL: "https://mysite.example/about/", Status: "publish",
	}, inv.Pages[1])
	require.Len(t, inv.Posts, 1)
	assert.Equal(t, PostItem, inv.Posts[0].Kind)
}

func TestWordPressSourceItemAndRender(t *testing.T) {
	ctx := context.Background()
	src := newWordPress(t, adminUser)

	item, err := src.Item(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, PostItem, item.Kind)
	assert.Equal(t, "hello-world.html", item.OutputName())

	doc, err := src.Render(ctx, "/hello-world/")
	require.NoError(t, err)
	assert.Equal(t, "Hello world! – My Site", doc.Title)
	assert.NoError(t, validateDocument(doc.HTML))

	_, err = src.Render(ctx, "/nowhere/")
	assert.ErrorIs(t, err, wordpress.ErrNotFound)
}
