package portable

import (
	"math"
	"sort"
)

// SizedFile is a file to be archived, named relative to the export root.
type SizedFile struct {
	Name string `yaml:"name"`
	Size int64  `yaml:"size"`
}

// ArchivePart is one archive's worth of files. Numbers start at 1.
type ArchivePart struct {
	Number    int         `yaml:"part"`
	Files     []SizedFile `yaml:"files"`
	Estimated int64       `yaml:"estimated_bytes"`
}

type PackOptions struct {
	// Ceiling is the most estimated bytes a part may hold; zero or less means one part.
	Ceiling int64
	// Derate scales raw sizes into estimated archive sizes; zero or less means 1.
	Derate float64
	// MandatoryFirst, if present among the files, is always the first file of part 1.
	MandatoryFirst string
}

func (o PackOptions) estimate(size int64) int64 {
	if o.Derate <= 0 {
		return size
	}
	return int64(math.Ceil(float64(size) * o.Derate))
}

// Pack distributes files over parts, largest first. A file that would take the current part over
// the ceiling starts a new part, unless the current part is still empty: a file larger than the
// ceiling gets a part to itself rather than being split. Largest-first greedy is not optimal; it
// is predictable.
func Pack(files []SizedFile, opts PackOptions) []ArchivePart {
	var (
		first  *SizedFile
		sorted = make([]SizedFile, 0, len(files))
	)
	for _, f := range files {
		if opts.MandatoryFirst != "" && f.Name == opts.MandatoryFirst {
			if first == nil {
				f := f
				first = &f
			}
			continue
		}
		sorted = append(sorted, f)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Size != sorted[j].Size {
			return sorted[i].Size > sorted[j].Size
		}
		return sorted[i].Name < sorted[j].Name
	})
	if first != nil {
		sorted = append([]SizedFile{*first}, sorted...)
	}

	var (
		parts []ArchivePart
		cur   = ArchivePart{Number: 1}
	)
	for _, f := range sorted {
		est := opts.estimate(f.Size)
		if opts.Ceiling > 0 && len(cur.Files) > 0 && cur.Estimated+est > opts.Ceiling {
			parts = append(parts, cur)
			cur = ArchivePart{Number: cur.Number + 1}
		}
		cur.Files = append(cur.Files, f)
		cur.Estimated += est
	}
	if len(cur.Files) > 0 {
		parts = append(parts, cur)
	}

	return parts
}
