package portable

import "errors"

var (
	ErrInvalidDocument = errors.New("portable: rendered document is empty or invalid")
	ErrNotPublished    = errors.New("portable: item is not published")
	ErrNotPermitted    = errors.New("portable: not permitted to export")
	ErrArchive         = errors.New("portable: couldn't create archives")
)
