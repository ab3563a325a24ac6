package gitlab

import (
	"errors"
	"fmt"
)

// Client configuration errors
var (
	ErrNoProject = errors.New("gitlab project not configured")
	ErrNoToken   = errors.New("gitlab token not configured")
)

// APIError is a failed GitLab request, carrying the HTTP status and the
// response body's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gitlab api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
