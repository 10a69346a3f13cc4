package repository

import "github.com/rotisserie/eris"

var (
	// ErrRenderTimeout is returned when the page did not finish rendering
	// within the configured page load timeout.
	ErrRenderTimeout = eris.New("render timed out")
	// ErrNavigationFailed covers every other rendering failure: DNS, TLS,
	// a crashed browser, a failed snapshot.
	ErrNavigationFailed = eris.New("navigation failed")
	// ErrExtractionFailed is returned when extraction aborted unexpectedly.
	ErrExtractionFailed = eris.New("extraction failed")
	// ErrScrapeCanceled is returned when the caller gave up before the page
	// could be requested.
	ErrScrapeCanceled = eris.New("scrape canceled")
	// ErrSiteNotFound is returned for a site name that is not configured.
	ErrSiteNotFound = eris.New("site not found")
)
