package tableio

import "errors"

var (
	// ErrUnsupportedFormat is returned when a source or destination has a
	// file type that cannot be read or written.
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrNoQuery is returned when a database source is opened without a query.
	ErrNoQuery = errors.New("database source requires a query")

	// ErrSheetNotFound is returned when a requested worksheet does not exist.
	ErrSheetNotFound = errors.New("worksheet not found")

	// ErrNoTable is returned when an HTML document has no table at the
	// requested position.
	ErrNoTable = errors.New("no table found")
)
