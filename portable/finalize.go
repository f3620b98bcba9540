package portable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const timestampLayout = "2006-01-02-150405"

// FinalizeResult describes the archives Finalize wrote.
type FinalizeResult struct {
	Manifest Manifest
}

func (r *FinalizeResult) Archives() []string {
	return r.Manifest.Archives()
}

// Finalize packs the given documents, always including index.html, plus the whole assets tree into
// archives next to them, and writes the manifest. In split mode documents and assets are packed
// into separate archive families, each part staying under the configured ceiling. Either every
// archive is written or none is.
func (exporter *Exporter) Finalize(ctx context.Context, files []string, split bool) (*FinalizeResult, error) {
	if err := exporter.authorize(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := exporter.Config.ExportDir
	docs, missing, err := exporter.documentFiles(files)
	if err != nil {
		return nil, err
	}
	assets, err := assetFiles(root)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 && len(assets) == 0 {
		return nil, fmt.Errorf("%w: nothing to archive in %s", ErrArchive, root)
	}

	now := exporter.Now()
	stamp := now.Format(timestampLayout)
	manifest := Manifest{
		Created:        now,
		Split:          split,
		SkippedMissing: missing,
	}

	var jobs []archiveJob
	if split {
		manifest.Ceiling = exporter.Config.ArchiveCeiling
		manifest.Derate = exporter.Config.Derate

		docParts := Pack(docs, PackOptions{
			Ceiling:        exporter.Config.ArchiveCeiling,
			Derate:         exporter.Config.Derate,
			MandatoryFirst: HomeFilename,
		})
		for _, p := range docParts {
			mp := ManifestPart{Archive: fmt.Sprintf("wp-export-%s-part%d.zip", stamp, p.Number), ArchivePart: p}
			manifest.Documents = append(manifest.Documents, mp)
			jobs = append(jobs, archiveJob{Name: mp.Archive, Part: p})
		}

		assetParts := Pack(assets, PackOptions{
			Ceiling: exporter.Config.ArchiveCeiling,
			Derate:  exporter.Config.Derate,
		})
		for _, p := range assetParts {
			mp := ManifestPart{Archive: fmt.Sprintf("wp-export-%s-assets-part%d.zip", stamp, p.Number), ArchivePart: p}
			manifest.Assets = append(manifest.Assets, mp)
			jobs = append(jobs, archiveJob{Name: mp.Archive, Part: p})
		}
	} else {
		// no ceiling, so exactly one part
		all := Pack(append(docs, assets...), PackOptions{MandatoryFirst: HomeFilename})
		mp := ManifestPart{Archive: fmt.Sprintf("wp-export-%s.zip", stamp), ArchivePart: all[0]}
		manifest.Documents = append(manifest.Documents, mp)
		jobs = append(jobs, archiveJob{Name: mp.Archive, Part: all[0]})
	}

	exporter.Logger.Printf("Writing %d archive(s)...\n", len(jobs))
	if err := writeArchives(root, jobs); err != nil {
		return nil, err
	}

	if err := manifest.write(root); err != nil {
		for _, a := range manifest.Archives() {
			os.Remove(filepath.Join(root, a))
		}
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}

	return &FinalizeResult{Manifest: manifest}, nil
}

// documentFiles sizes up the listed documents. Names must be plain file names in the export root.
// Files that don't exist (say, an item that failed to export) are skipped.
func (exporter *Exporter) documentFiles(names []string) ([]SizedFile, []string, error) {
	root := exporter.Config.ExportDir

	var (
		docs    []SizedFile
		missing []string
		seen    = make(map[string]bool)
	)

	// index.html goes in whether or not the caller remembered it
	names = append([]string{HomeFilename}, names...)

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return nil, nil, fmt.Errorf("portable: refusing to archive %q: not a file in the export directory", name)
		}

		info, err := os.Stat(filepath.Join(root, name))
		if err != nil || !info.Mode().IsRegular() {
			exporter.Logger.Printf("Skipping %s: not found in %s\n", name, root)
			missing = append(missing, name)
			continue
		}

		docs = append(docs, SizedFile{Name: name, Size: info.Size()})
	}

	return docs, missing, nil
}
