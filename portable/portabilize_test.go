package portable

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPortabilizer(t *testing.T) (*Portabilizer, testEnv) {
	t.Helper()
	env := newTestEnv(t)
	for _, f := range []string{
		"wp-includes/js/app.js",
		"wp-includes/js/wp-emoji-release.min.js",
		"wp-content/themes/t/font.woff2",
		"wp-content/uploads/a.png",
		"wp-content/uploads/b.jpg",
		"wp-content/uploads/bg.webp",
	} {
		writeFile(t, filepath.Join(env.docRoot, filepath.FromSlash(f)), "data of "+f)
	}

	cfg := env.cfg.WithDefaults()
	links := BuildLinkMap(cfg.HomeURL, &Inventory{
		Pages: []ContentItem{page(5, "about", "About"), page(6, "contact", "Contact")},
		Posts: []ContentItem{post(10, "hello-world", "Hello")},
	})
	locator, err := NewLocator(cfg)
	require.NoError(t, err)

	return NewPortabilizer(cfg, links, locator, NewCopier(cfg.AssetsDir())), env
}

const sampleDocument = `<!DOCTYPE html>
<html lang="en"><head>
<title>About</title>
<meta name="generator" content="WordPress 6.4.2" />
<link rel="https://api.w.org/" href="https://mysite.example/wp-json/" />
<link rel="EditURI" type="application/rsd+xml" title="RSD" href="https://mysite.example/xmlrpc.php?rsd" />
<link rel="wlwmanifest" type="application/wlwmanifest+xml" href="https://mysite.example/wp-includes/wlwmanifest.xml" />
<link rel="shortlink" href="https://mysite.example/?p=5" />
<link rel="pingback" href="https://mysite.example/xmlrpc.php" />
<link rel="stylesheet" id="theme-css" href="https://mysite.example/wp-content/themes/t/style.css?ver=1.0" media="all" />
<link rel="preload" href="/wp-content/themes/t/font.woff2" as="font" crossorigin />
<script src="/wp-includes/js/app.js?ver=2"></script>
<script>window._wpemojiSettings = {"source":{"concatemoji":"https:\/\/mysite.example\/wp-includes\/js\/wp-emoji-release.min.js"}};</script>
<style id="wp-emoji-styles-inline-css">img.wp-smiley, img.emoji { display: inline !important; }</style>
<style>.keep-me { color: blue }</style>
</head><body>
<div id="wpadminbar" class="nojq">toolbar</div>
<nav>
<a href="https://mysite.example/">Home</a>
<a href="https://mysite.example/about/">About</a>
<a href='https://mysite.example/contact'>Contact</a>
<a href="https://mysite.example/2024/01/hello-world/">Hello</a>
<a href="https://mysite.example/unmapped/">Elsewhere</a>
</nav>
<img src="/wp-content/uploads/a.png" srcset="/wp-content/uploads/a.png 1x, https://mysite.example/wp-content/uploads/b.jpg 2x" alt="">
<div class="hero" style="background-image: url('/wp-content/uploads/bg.webp')"></div>
<img src="https://otherhost.example/x.png">
<img src="/wp-content/uploads/missing.png">
<script>console.log("keep")</script>
</body></html>
`

func TestPortabilizeRewritesLinks(t *testing.T) {
	p, _ := newTestPortabilizer(t)
	out := p.Portabilize(sampleDocument, false)

	assert.Contains(t, out, `<a href="index.html">Home</a>`)
	assert.Contains(t, out, `<a href="about.html">About</a>`)
	assert.Contains(t, out, `<a href='contact.html'>Contact</a>`)
	assert.Contains(t, out, `<a href="hello-world.html">Hello</a>`)

	for _, u := range p.links.URLs() {
		assert.NotContains(t, out, `href="`+u+`"`)
		assert.NotContains(t, out, `href='`+u+`'`)
	}
}

func TestPortabilizeErasesOrigin(t *testing.T) {
	p, _ := newTestPortabilizer(t)

	for _, copyAssets := range []bool{false, true} {
		out := p.Portabilize(sampleDocument, copyAssets)
		assert.NotContains(t, out, testSite)
		assert.Contains(t, out, `<a href="unmapped/">Elsewhere</a>`)
	}
}

func TestPortabilizeHomeURLWithoutSlash(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.HomeURL = testSite
	cfg := env.cfg.WithDefaults()
	p := NewPortabilizer(cfg, BuildLinkMap(cfg.HomeURL, nil), nil, nil)

	out := p.Portabilize(`<a href="`+testSite+`/">Home</a> <a href="`+testSite+`">Home</a>`, false)
	assert.Equal(t, `<a href="index.html">Home</a> <a href="index.html">Home</a>`, out)
}

func TestPortabilizeErasesLookalikeHosts(t *testing.T) {
	p, _ := newTestPortabilizer(t)

	out := p.Portabilize(`<a href="`+testSite+`.org/x">Other</a>`, false)
	assert.Equal(t, `<a href=".org/x">Other</a>`, out)
}

func TestPortabilizeKeepsLinksMentioningDiscoveryTokens(t *testing.T) {
	p, _ := newTestPortabilizer(t)

	in := `<link rel="alternate" href="https://elsewhere.example/feed/pingback/" />`
	assert.Equal(t, in, p.Portabilize(in, false))
}

func TestPortabilizeStripsHostMarkup(t *testing.T) {
	p, _ := newTestPortabilizer(t)
	out := p.Portabilize(sampleDocument, false)

	for _, gone := range []string{
		`name="generator"`,
		`api.w.org`,
		`rel="EditURI"`,
		`rel="wlwmanifest"`,
		`rel="shortlink"`,
		`rel="pingback"`,
		`_wpemojiSettings`,
		`wp-emoji-styles`,
		`wpadminbar`,
	} {
		assert.NotContains(t, out, gone)
	}

	assert.Contains(t, out, `.keep-me { color: blue }`)
	assert.Contains(t, out, `console.log("keep")`)
	assert.Contains(t, out, `<title>About</title>`)
}

var assetPathShape = regexp.MustCompile(`^assets/(css|js|images|fonts)/[^/]+$`)

func TestPortabilizeCopiesAssets(t *testing.T) {
	p, env := newTestPortabilizer(t)
	out := p.Portabilize(sampleDocument, true)

	assert.Contains(t, out, `href="assets/css/style.css"`)
	assert.Contains(t, out, `href="assets/fonts/font.woff2"`)
	assert.Contains(t, out, `<script src="assets/js/app.js"></script>`)
	assert.Contains(t, out, `<img src="assets/images/a.png" srcset="assets/images/a.png 1x, assets/images/b.jpg 2x"`)
	assert.Contains(t, out, `url('assets/images/bg.webp')`)

	// ineligible references are left alone
	assert.Contains(t, out, `<img src="https://otherhost.example/x.png">`)
	assert.Contains(t, out, `<img src="/wp-content/uploads/missing.png">`)

	for _, f := range []string{"css/style.css", "fonts/font.woff2", "js/app.js", "images/a.png", "images/b.jpg", "images/bg.webp"} {
		assert.FileExists(t, filepath.Join(env.exportDir, "assets", filepath.FromSlash(f)))
	}
	// a.png was referenced twice but copied once
	assert.NoFileExists(t, filepath.Join(env.exportDir, "assets", "images", "a-1.png"))

	refs := regexp.MustCompile(`(?:href|src)=["'](assets/[^"']+)["']`).FindAllStringSubmatch(out, -1)
	require.NotEmpty(t, refs)
	for _, r := range refs {
		assert.Regexp(t, assetPathShape, r[1])
		assert.NotContains(t, r[1], "..")
	}
}

func TestPortabilizeLeavesExternalImage(t *testing.T) {
	p, _ := newTestPortabilizer(t)
	in := `<img src="https://otherhost.example/x.png">`

	assert.Equal(t, in, p.rewriteAssets(in))
	assert.Equal(t, in, p.Portabilize(in, true))
}

func TestPortabilizeWithoutAssetCopying(t *testing.T) {
	p, env := newTestPortabilizer(t)
	out := p.Portabilize(sampleDocument, false)

	assert.Contains(t, out, `href="wp-content/themes/t/style.css?ver=1.0"`)
	assert.Contains(t, out, `<script src="/wp-includes/js/app.js?ver=2"></script>`)
	assert.NoDirExists(t, filepath.Join(env.exportDir, "assets"))
}

func TestSrcsetKeepsDescriptors(t *testing.T) {
	p, _ := newTestPortabilizer(t)

	got := p.srcset(" /wp-content/uploads/a.png 300w ,, /nope.png 600w,https://otherhost.example/x.png ")
	assert.Equal(t, "assets/images/a.png 300w, /nope.png 600w, https://otherhost.example/x.png", got)
}

func TestReplaceGroup(t *testing.T) {
	re := regexp.MustCompile(`src="([^"]+)"`)
	got := replaceGroup(re, `<a src="x"> <b src="y">`, 1, strings.ToUpper)
	assert.Equal(t, `<a src="X"> <b src="Y">`, got)
	assert.Equal(t, "untouched", replaceGroup(re, "untouched", 1, strings.ToUpper))
}
