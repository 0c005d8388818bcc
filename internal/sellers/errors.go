package sellers

import "errors"

var (
	// ErrNotFound is returned by repositories when no seller matches.
	ErrNotFound = errors.New("seller not found")
	// ErrSlugTaken is returned by repositories when the unique slug index rejects an insert.
	ErrSlugTaken = errors.New("seller slug already taken")
)
