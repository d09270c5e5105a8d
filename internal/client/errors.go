package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken is returned when an authenticated call is attempted
	// before logging in.
	ErrNoToken = errors.New("not logged in")

	// ErrNoChanges is returned by the profile update flow when the
	// submitted values match the current record exactly.
	ErrNoChanges = errors.New("nothing changed")

	// ErrMissingThumbnail is returned by the add-book flow when no
	// thumbnail image was provided.
	ErrMissingThumbnail = errors.New("a thumbnail image is required")

	// ErrMissingSliderImages is returned by the add-book flow when the
	// gallery is empty; every book carries at least one slider image.
	ErrMissingSliderImages = errors.New("at least one slider image is required")

	// ErrTooManySliderImages is returned by the add-book flow when the
	// gallery exceeds the per-book cap.
	ErrTooManySliderImages = errors.New("too many slider images")
)

// APIError is a failure envelope from the backend: the data field was
// absent and only a message came back.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 failure envelope.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
