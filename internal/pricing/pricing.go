// Package pricing turns a cabinet-refacing quote request and a pricing
// catalog into an itemized cost breakdown.
//
// Apart from warn-level logging of skipped sections the package does no I/O
// and keeps no shared mutable state. A
// Catalog is built once at startup and may be shared by any number of
// goroutines calling Calculate concurrently.
package pricing

import "errors"

var (
	// ErrMalformedRequest reports that a required group of the request
	// (sections, piece counts or price setup) is missing or has the wrong shape.
	ErrMalformedRequest = errors.New("malformed quote request")

	// ErrMissingCatalog reports that no usable pricing tables are loaded.
	ErrMissingCatalog = errors.New("pricing catalog not loaded")
)
