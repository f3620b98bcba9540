package portable

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ReadmeFilename   = "README.txt"
	ManifestFilename = "export.yaml"
)

// Manifest describes one finished export.
type Manifest struct {
	Created        time.Time      `yaml:"created"`
	Split          bool           `yaml:"split"`
	Ceiling        int64          `yaml:"ceiling_bytes,omitempty"`
	Derate         float64        `yaml:"derate,omitempty"`
	Documents      []ManifestPart `yaml:"documents"`
	Assets         []ManifestPart `yaml:"assets,omitempty"`
	SkippedMissing []string       `yaml:"skipped_missing,omitempty"`
}

type ManifestPart struct {
	Archive     string `yaml:"archive"`
	ArchivePart `yaml:",inline"`
}

func (m Manifest) Archives() []string {
	var out []string
	for _, p := range m.Documents {
		out = append(out, p.Archive)
	}
	for _, p := range m.Assets {
		out = append(out, p.Archive)
	}
	return out
}

func (m Manifest) readme() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Static site export\n")
	fmt.Fprintf(&b, "==================\n\n")
	fmt.Fprintf(&b, "Exported: %s\n", m.Created.Format("2006-01-02 15:04:05"))
	if m.Split {
		fmt.Fprintf(&b, "HTML archives: %d\n", len(m.Documents))
		fmt.Fprintf(&b, "Asset archives: %d\n", len(m.Assets))
	} else {
		fmt.Fprintf(&b, "Archives: %d\n", len(m.Documents))
	}

	b.WriteString("\nFiles:\n")
	for _, a := range m.Archives() {
		fmt.Fprintf(&b, "  - %s\n", a)
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("  1. Extract every archive into the same directory.\n")
	b.WriteString("  2. Upload the contents of that directory to your web host.\n")
	b.WriteString("  3. Open index.html; all links between pages are relative.\n")
	if m.Split {
		fmt.Fprintf(&b, "\nArchives were split to keep each one under roughly %.1f MiB.\n", float64(m.Ceiling)/(1<<20))
	}

	return b.String()
}

// write puts README.txt and export.yaml next to the archives.
func (m Manifest) write(root string) error {
	if err := os.WriteFile(filepath.Join(root, ReadmeFilename), []byte(m.readme()), 0o644); err != nil {
		return fmt.Errorf("portable: couldn't write %s: %w", ReadmeFilename, err)
	}

	out, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("portable: couldn't marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestFilename), out, 0o644); err != nil {
		return fmt.Errorf("portable: couldn't write %s: %w", ManifestFilename, err)
	}
	return nil
}
