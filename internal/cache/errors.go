package cache

import "errors"

// Error kinds. Fetchers wrap ErrFetchFailed or ErrParseFailed; the cache
// returns ErrNoDataAvailable (wrapping the fetch error) when it has nothing to serve.
var (
	ErrFetchFailed     = errors.New("fetch failed")
	ErrParseFailed     = errors.New("parse failed")
	ErrNoDataAvailable = errors.New("no data available")
	ErrClosed          = errors.New("cache closed")
)
