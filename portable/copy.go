package portable

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Kind is an asset bucket under assets/.
type Kind string

const (
	KindCSS    Kind = "css"
	KindJS     Kind = "js"
	KindImages Kind = "images"
	KindFonts  Kind = "fonts"
)

var AssetKinds = []Kind{KindCSS, KindJS, KindImages, KindFonts}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Copier copies located assets into the export tree.
type Copier struct {
	assetsDir string

	// kind/source -> relative destination, for the lifetime of one run
	copied map[string]string
}

func NewCopier(assetsDir string) *Copier {
	return &Copier{
		assetsDir: assetsDir,
		copied:    make(map[string]string),
	}
}

// Copy places src into assets/<kind>/ and returns the relative path to reference it by. If the
// destination name is taken, -1, -2, ... is inserted before the extension. The same source is
// only copied once per Copier.
func (c *Copier) Copy(src string, kind Kind) (string, error) {
	memo := string(kind) + "\x00" + src
	if rel, ok := c.copied[memo]; ok {
		return rel, nil
	}

	name := unsafeNameChars.ReplaceAllString(filepath.Base(src), "")
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("portable: no usable file name for %s", src)
	}

	dir := filepath.Join(c.assetsDir, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("portable: couldn't create asset directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("portable: couldn't open asset: %w", err)
	}
	defer in.Close()

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	var (
		out   *os.File
		final string
	)
	for n := 0; ; n++ {
		final = name
		if n > 0 {
			final = base + "-" + strconv.Itoa(n) + ext
		}
		out, err = os.OpenFile(filepath.Join(dir, final), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("portable: couldn't create %s: %w", final, err)
		}
	}

	dst := out.Name()
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("portable: couldn't copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("portable: couldn't finish copying %s: %w", src, err)
	}

	rel := path.Join("assets", string(kind), final)
	c.copied[memo] = rel
	return rel, nil
}
