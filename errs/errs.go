package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrVideoUnavailable indicates that the API answered but offered nothing playable.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrGeoBlocked indicates the video is not available in the caller's region.
	ErrGeoBlocked = errors.New("geo blocked")
	// ErrAPI indicates the playJson API reported a failure status.
	ErrAPI = errors.New("api error")
	// ErrNotFound indicates that a page or API resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNetwork indicates that a page or API resource could not be fetched.
	ErrNetwork = errors.New("network error")
	// ErrUnsupportedURL indicates that the input matches none of the known URL patterns.
	ErrUnsupportedURL = errors.New("unsupported url")
	// ErrParse indicates a malformed value scraped from a page.
	ErrParse = errors.New("parse error")
)

// AuthError is returned when the API rejects playback for the reported country.
type AuthError struct {
	Country string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Country %s auth error", e.Country)
}

// Is makes errors.Is(err, ErrGeoBlocked) hold for any *AuthError.
func (e *AuthError) Is(target error) bool { return target == ErrGeoBlocked }

// APIError carries the opaque flag of a non-zero failure status.
type APIError struct {
	Flag int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Generic error. flag = %d", e.Flag)
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

// NetworkError wraps a failed page or API fetch.
// StatusCode is zero when the request never produced a response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed", e.URL)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports ErrNotFound for HTTP 404/410 and ErrNetwork for everything else.
func (e *NetworkError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
	case ErrNetwork:
		return true
	}
	return false
}

// ParseError describes a scraped field that could not be interpreted.
// Callers recover from it locally; it is never surfaced from a resolution.
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsExpected reports whether err is an anticipated failure with a
// user-facing message, as opposed to an internal error.
func IsExpected(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{ErrGeoBlocked, ErrAPI, ErrNotFound, ErrNetwork, ErrUnsupportedURL, ErrVideoUnavailable} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
