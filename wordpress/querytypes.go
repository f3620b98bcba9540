package wordpress

// ListContentQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/pages/#list-pages
//
// Posts take the same shape:
// https://developer.wordpress.org/rest-api/reference/posts/#list-posts
type ListContentQuery struct {
	Status  []string `url:"status,omitempty,comma"` // publish, future, draft, pending, private
	OrderBy string   `url:"orderby,omitempty"`      // date, id, title, slug, menu_order (pages only), ...
	Order   string   `url:"order,omitempty"`        // asc, desc
	Include []int    `url:"include,omitempty,comma"`
	Context string   `url:"context,omitempty"` // view, embed, edit

	// Pagination is page-numbered; the total is returned in the X-WP-TotalPages header.
	Page    int `url:"page,omitempty"`
	PerPage int `url:"per_page,omitempty"` // range 1-100
}

// GetContentByIDQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/pages/#retrieve-a-page
type GetContentByIDQuery struct {
	ID      int    `url:"-"` // required
	Context string `url:"context,omitempty"`
}

// CurrentUserQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/users/#retrieve-a-user-2
//
// Capabilities are only included with context=edit.
type CurrentUserQuery struct {
	Context string `url:"context,omitempty"`
}
