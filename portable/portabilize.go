package portable

import (
	"regexp"
	"strings"
)

var (
	stylesheetRef = regexp.MustCompile(`(?i)<link[^>]*href=["']([^"']+\.css[^"']*)["'][^>]*>`)
	fontRef       = regexp.MustCompile(`(?i)<link[^>]*href=["']([^"']+\.(?:woff2?|ttf|otf|eot)(?:[?#][^"']*)?)["'][^>]*>`)
	scriptRef     = regexp.MustCompile(`(?i)<script[^>]*src=["']([^"']+\.js[^"']*)["'][^>]*>`)
	imageRef      = regexp.MustCompile(`(?i)src=["']([^"']+\.(?:jpg|jpeg|png|gif|svg|webp|ico)[^"']*)["']`)
	backgroundRef = regexp.MustCompile(`(?i)url\(["']?([^"')]+\.(?:jpg|jpeg|png|gif|svg|webp))["']?\)`)
	srcsetRef     = regexp.MustCompile(`(?i)srcset=(["'])([^"']+)["']`)
)

var (
	// Nested divs inside the toolbar end the match early. Anonymous renders don't get a
	// toolbar in the first place.
	adminBar      = regexp.MustCompile(`(?is)<div[^>]*id=["']wpadminbar["'][^>]*>.*?</div>\s*`)
	generatorMeta = regexp.MustCompile(`(?i)<meta[^>]*name=["']generator["'][^>]*>\s*`)
	discoveryLink = regexp.MustCompile(`(?i)<link[^>]*rel=["'](?:https://api\.w\.org/|shortlink|EditURI|wlwmanifest|pingback)["'][^>]*>\s*`)
	inlineScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>\s*`)
	inlineStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>\s*`)
)

// Portabilizer rewrites rendered documents so that they only reference each other and copied
// assets by relative path.
type Portabilizer struct {
	siteBase string
	links    *LinkMap
	locator  *Locator
	// nil disables asset copying altogether
	copier *Copier
}

func NewPortabilizer(cfg Config, links *LinkMap, locator *Locator, copier *Copier) *Portabilizer {
	return &Portabilizer{
		siteBase: strings.TrimRight(cfg.SiteURL, "/"),
		links:    links,
		locator:  locator,
		copier:   copier,
	}
}

// Portabilize runs the rewrite steps in order: internal links, assets (when copyAssets is set),
// WordPress housekeeping markup, and finally any remaining mention of the site URL. It is a
// best-effort text transform and never fails.
func (p *Portabilizer) Portabilize(html string, copyAssets bool) string {
	html = p.rewriteLinks(html)
	if copyAssets && p.copier != nil && p.locator != nil {
		html = p.rewriteAssets(html)
	}
	html = stripHostMarkup(html)
	return p.deabsolutize(html)
}

// Literal attribute replacement. A URL that happens to be an entire attribute value somewhere
// other than an anchor gets rewritten too.
func (p *Portabilizer) rewriteLinks(html string) string {
	if p.links == nil {
		return html
	}
	pairs := make([]string, 0, 4*p.links.Len())
	for _, u := range p.links.URLs() {
		file, _ := p.links.Lookup(u)
		pairs = append(pairs,
			`href="`+u+`"`, `href="`+file+`"`,
			`href='`+u+`'`, `href='`+file+`'`,
		)
	}
	for i := 0; i < len(pairs); i += 2 {
		html = strings.ReplaceAll(html, pairs[i], pairs[i+1])
	}
	return html
}

func (p *Portabilizer) rewriteAssets(html string) string {
	html = replaceGroup(stylesheetRef, html, 1, func(ref string) string { return p.asset(ref, KindCSS) })
	html = replaceGroup(fontRef, html, 1, func(ref string) string { return p.asset(ref, KindFonts) })
	html = replaceGroup(scriptRef, html, 1, func(ref string) string { return p.asset(ref, KindJS) })
	html = replaceGroup(imageRef, html, 1, func(ref string) string { return p.asset(ref, KindImages) })
	html = replaceGroup(backgroundRef, html, 1, func(ref string) string { return p.asset(ref, KindImages) })
	html = replaceGroup(srcsetRef, html, 2, p.srcset)
	return html
}

// asset returns the copied asset's relative path, or ref itself if it can't be copied.
func (p *Portabilizer) asset(ref string, kind Kind) string {
	if p.locator.IsExternal(ref) {
		return ref
	}
	local, ok := p.locator.Locate(ref)
	if !ok {
		return ref
	}
	rel, err := p.copier.Copy(local, kind)
	if err != nil {
		return ref
	}
	return rel
}

// srcset holds "url descriptor" candidates separated by commas; the descriptor is optional.
func (p *Portabilizer) srcset(list string) string {
	var out []string
	for _, candidate := range strings.Split(list, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		fields[0] = p.asset(fields[0], KindImages)
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, ", ")
}

func stripHostMarkup(html string) string {
	html = adminBar.ReplaceAllString(html, "")
	html = generatorMeta.ReplaceAllString(html, "")
	html = discoveryLink.ReplaceAllString(html, "")
	html = inlineScript.ReplaceAllStringFunc(html, dropEmoji)
	html = inlineStyle.ReplaceAllStringFunc(html, dropEmoji)
	return html
}

func dropEmoji(block string) string {
	if strings.Contains(block, "wp-emoji") || strings.Contains(block, "_wpemojiSettings") {
		return ""
	}
	return block
}

// deabsolutize drops the site URL everywhere. The bare form goes second so that no spelling of
// it survives; a different host that merely starts with the same string is cut too.
func (p *Portabilizer) deabsolutize(html string) string {
	if p.siteBase == "" {
		return html
	}
	html = strings.ReplaceAll(html, p.siteBase+"/", "")
	return strings.ReplaceAll(html, p.siteBase, "")
}

// replaceGroup replaces only the given capture group of every match of re in s.
func replaceGroup(re *regexp.Regexp, s string, group int, fn func(string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		start, end := m[2*group], m[2*group+1]
		if start < 0 {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(fn(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
