package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const perPage = 100

// ListAllPages returns every published page in menu order, which is the order the site shows
// them in navigation.
func (api *API) ListAllPages(ctx context.Context) ([]Content, error) {
	return api.listAll(ctx, PageContent, ListContentQuery{
		Status:  []string{"publish"},
		OrderBy: "menu_order",
		Order:   "asc",
	})
}

// ListAllPosts returns every published post, newest first.
func (api *API) ListAllPosts(ctx context.Context) ([]Content, error) {
	return api.listAll(ctx, PostContent, ListContentQuery{
		Status:  []string{"publish"},
		OrderBy: "date",
		Order:   "desc",
	})
}

func (api *API) listAll(ctx context.Context, ct ContentType, query ListContentQuery) ([]Content, error) {
	results := []Content{}
	query.PerPage = perPage
	query.Page = 1

	for {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		items, pages, err := api.listContentPage(ctx, ct, query)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("wordpress: couldn't list %ss (page %d): %w", ct, query.Page, err)
		}

		results = append(results, items...)

		if query.Page >= pages || len(items) == 0 {
			break
		}
		query.Page++
	}

	return results, nil
}

// Inventory lists pages, posts and reading settings concurrently. All three are plain reads, so
// there is nothing to coordinate beyond collecting the first error.
func (api *API) Inventory(ctx context.Context) (*Inventory, error) {
	var inv Inventory

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		pages, err := api.ListAllPages(gctx)
		if err != nil {
			return err
		}
		inv.Pages = pages
		return nil
	})
	grp.Go(func() error {
		posts, err := api.ListAllPosts(gctx)
		if err != nil {
			return err
		}
		inv.Posts = posts
		return nil
	})
	grp.Go(func() error {
		settings, err := api.GetSettings(gctx)
		if err != nil {
			return err
		}
		inv.Settings = *settings
		return nil
	})

	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't build content inventory: %w", err)
	}

	return &inv, nil
}

// WordPress reports the number of result pages in a header; a missing or junk header means
// "this is all of it".
func totalPages(header http.Header) int {
	n, err := strconv.Atoi(header.Get("X-WP-TotalPages"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
