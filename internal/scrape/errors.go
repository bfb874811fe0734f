package scrape

import "fmt"

// FetchErrorKind distinguishes fetch failure classes in logs and tests.
type FetchErrorKind string

// Fetch failure kinds.
const (
	FetchTimeout   FetchErrorKind = "timeout"
	FetchConnect   FetchErrorKind = "connect"
	FetchBadStatus FetchErrorKind = "bad_status"
)

// FetchError reports a failed page fetch. The pipeline treats it as "zero
// links found" for the affected page, never as a run-fatal condition.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchBadStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
