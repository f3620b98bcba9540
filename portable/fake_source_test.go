package portable

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSite = "https://mysite.example"

type fakeSource struct {
	authErr   error
	authCalls int
	inv       Inventory
	extra     map[int]ContentItem // items not in the inventory, e.g. drafts
	docs      map[string]string   // url -> html
	rendered  []string
}

func (f *fakeSource) Authorize(ctx context.Context) error {
	f.authCalls++
	return f.authErr
}

func (f *fakeSource) Inventory(ctx context.Context) (*Inventory, error) {
	inv := f.inv
	return &inv, nil
}

func (f *fakeSource) Item(ctx context.Context, id int) (ContentItem, error) {
	for _, items := range [][]ContentItem{f.inv.Pages, f.inv.Posts} {
		for _, i := range items {
			if i.ID == id {
				return i, nil
			}
		}
	}
	if i, ok := f.extra[id]; ok {
		return i, nil
	}
	return ContentItem{}, fmt.Errorf("fake: no item %d", id)
}

func (f *fakeSource) Render(ctx context.Context, url string) (RenderedDocument, error) {
	f.rendered = append(f.rendered, url)
	html, ok := f.docs[url]
	if !ok {
		return RenderedDocument{}, fmt.Errorf("fake: nothing at %s", url)
	}
	return RenderedDocument{HTML: html}, nil
}

func page(id int, slug, title string) ContentItem {
	u := testSite + "/" + slug + "/"
	if slug == "" {
		u = fmt.Sprintf("%s/?page_id=%d", testSite, id)
	}
	return ContentItem{ID: id, Kind: PageItem, Title: title, Slug: slug, URL: u, Status: "publish"}
}

func post(id int, slug, title string) ContentItem {
	return ContentItem{ID: id, Kind: PostItem, Title: title, Slug: slug, URL: testSite + "/2024/01/" + slug + "/", Status: "publish"}
}

// document wraps body into something that passes document validation.
func document(title, body string) string {
	return "<!DOCTYPE html>\n<html><head><title>" + title + "</title></head><body>\n" +
		body + "\n<!-- " + strings.Repeat("-", 80) + " -->\n</body></html>\n"
}

// newTestSource serves a home page, about (5, empty slug), contact (6) and two posts.
func newTestSource() *fakeSource {
	about := page(5, "", "About Us")
	contact := page(6, "contact", "Contact")
	hello := post(10, "hello-world", "Hello world")
	second := post(11, "second", "Second post")

	nav := `<a href="` + testSite + `/">Home</a> <a href="` + about.URL + `">About</a> <a href="` + contact.URL + `">Contact</a>`

	return &fakeSource{
		inv: Inventory{
			Pages: []ContentItem{about, contact},
			Posts: []ContentItem{hello, second},
		},
		extra: map[int]ContentItem{
			8: {ID: 8, Kind: PageItem, Title: "Draft", Slug: "draft", URL: testSite + "/draft/", Status: "draft"},
		},
		docs: map[string]string{
			testSite + "/": document("Home", nav+`<link rel="stylesheet" href="/wp-content/themes/t/style.css?ver=1">`),
			about.URL:      document("About Us", nav),
			contact.URL:    document("Contact", nav),
			hello.URL:      document("Hello", nav),
			second.URL:     document("Second", nav),
		},
	}
}

type testEnv struct {
	exportDir string
	docRoot   string
	cfg       Config
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		exportDir: filepath.Join(dir, "export"),
		docRoot:   filepath.Join(dir, "htdocs"),
	}
	env.cfg = Config{
		SiteURL:      testSite,
		DocumentRoot: env.docRoot,
		ExportDir:    env.exportDir,
	}

	writeFile(t, filepath.Join(env.docRoot, "wp-content", "themes", "t", "style.css"), "body { color: red }")
	return env
}

func newTestExporter(t *testing.T, env testEnv, src Source) *Exporter {
	t.Helper()
	exporter, err := NewExporter(env.cfg, src, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	exporter.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }
	return exporter
}

func writeFile(t *testing.T, name, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(contents), 0o644))
}
