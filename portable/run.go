package portable

import (
	"context"
	"fmt"
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type RunOptions struct {
	// PageIDs to export; empty means every published page.
	PageIDs      []int
	IncludePosts bool
	CopyAssets   bool
	Split        bool

	// Progress receives a progress bar if set.
	Progress io.Writer
}

type ItemFailure struct {
	ID  int // zero for the home page
	Err error
}

type RunReport struct {
	Home     *ExportedItem
	Exported []ExportedItem
	Failures []ItemFailure
	Archives *FinalizeResult
}

// Files lists every document the run produced.
func (r *RunReport) Files() []string {
	var files []string
	if r.Home != nil {
		files = append(files, r.Home.Filename)
	}
	for _, e := range r.Exported {
		files = append(files, e.Filename)
	}
	return files
}

// Run exports the home page, then every queued item, then packs the archives. A failing item is
// recorded in the report and the run carries on; authorization, inventory and archive failures
// end it.
func (exporter *Exporter) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	report := &RunReport{}

	inv, err := exporter.Inventory(ctx)
	if err != nil {
		return report, err
	}

	pageIDs := opts.PageIDs
	if len(pageIDs) == 0 {
		for _, p := range inv.Pages {
			pageIDs = append(pageIDs, p.ID)
		}
	}

	queue, err := exporter.BuildQueue(ctx, pageIDs, opts.IncludePosts)
	if err != nil {
		return report, err
	}
	exporter.Logger.Printf("Exporting the home page and %d items...\n", len(queue))

	var (
		progress *mpb.Progress
		bar      *mpb.Bar
	)
	if opts.Progress != nil {
		progress = mpb.New(mpb.WithOutput(opts.Progress), mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(queue)+1),
			mpb.PrependDecorators(
				decor.Name("export:", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d/%d) "),
				decor.NewPercentage("%d"),
				decor.Spinner([]string{" /", " -", " \\", " |"}),
			),
		)
	}
	stopProgress := func(aborted bool) {
		if progress == nil {
			return
		}
		if aborted {
			bar.Abort(false)
		}
		progress.Wait()
	}
	tick := func() {
		if bar != nil {
			bar.Increment()
		}
	}

	home, err := exporter.ExportHome(ctx, opts.CopyAssets)
	if err != nil {
		// the original home page may just be broken; everything else can still go out
		exporter.Logger.Printf("Home page failed: %v\n", err)
		report.Failures = append(report.Failures, ItemFailure{Err: err})
	} else {
		report.Home = &home
	}
	tick()

	for _, id := range queue {
		if err := ctx.Err(); err != nil {
			stopProgress(true)
			return report, fmt.Errorf("portable: export interrupted: %w", err)
		}

		item, err := exporter.ExportItem(ctx, id, opts.CopyAssets)
		if err != nil {
			exporter.Logger.Printf("Item %d failed: %v\n", id, err)
			report.Failures = append(report.Failures, ItemFailure{ID: id, Err: err})
		} else {
			report.Exported = append(report.Exported, item)
		}
		tick()
	}
	stopProgress(false)

	result, err := exporter.Finalize(ctx, report.Files(), opts.Split)
	if err != nil {
		return report, err
	}
	report.Archives = result

	return report, nil
}
