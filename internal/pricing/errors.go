package pricing

import "errors"

var (
	// ErrCatalogUnavailable is returned when the remote catalog cannot be
	// reached, or rejects our request (e.g. authentication failure).
	ErrCatalogUnavailable = errors.New("pricing catalog unavailable")

	ErrUnknownRegion = errors.New("region is not known to the region table")

	// ErrMalformedCatalogEntry is returned when a product returned by the
	// catalog does not have the shape we require to price it.
	ErrMalformedCatalogEntry = errors.New("malformed catalog entry")
)
