package portable

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Formats that are already compressed are stored as-is.
var storedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".woff": true, ".woff2": true, ".zip": true, ".gz": true,
}

type archiveJob struct {
	Name string // file name inside the export root
	Part ArchivePart
}

// writeArchives writes every job's archive into root. Each archive is written under a .partial
// name and only renamed once complete; if anything fails, every archive from this call is removed.
func writeArchives(root string, jobs []archiveJob) error {
	var done []string
	for _, job := range jobs {
		dest := filepath.Join(root, job.Name)
		if err := writeArchive(root, dest, job.Part.Files); err != nil {
			for _, d := range done {
				os.Remove(d)
			}
			return fmt.Errorf("%w: %s: %w", ErrArchive, job.Name, err)
		}
		done = append(done, dest)
	}
	return nil
}

func writeArchive(root, dest string, files []SizedFile) (err error) {
	partial := dest + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("couldn't create archive: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(partial)
		}
	}()

	zw := zip.NewWriter(out)
	for _, f := range files {
		if err = addFile(zw, root, f.Name); err != nil {
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("couldn't finish archive: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("couldn't close archive: %w", err)
	}
	if err = os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return fmt.Errorf("couldn't move archive into place: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, root, name string) error {
	src := filepath.Join(root, filepath.FromSlash(name))
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("couldn't open %s: %w", name, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("couldn't stat %s: %w", name, err)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("couldn't build header for %s: %w", name, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	if storedExtensions[strings.ToLower(path.Ext(name))] {
		hdr.Method = zip.Store
	}

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("couldn't add %s: %w", name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("couldn't write %s: %w", name, err)
	}
	return nil
}

// assetFiles lists every regular file under root/assets, named relative to root.
func assetFiles(root string) ([]SizedFile, error) {
	var files []SizedFile
	assets := filepath.Join(root, "assets")

	err := filepath.WalkDir(assets, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == assets {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, SizedFile{Name: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("portable: couldn't list assets: %w", err)
	}

	return files, nil
}
