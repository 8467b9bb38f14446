package restclient

import "fmt"

// APIError is returned for any response with status 400 or higher. It keeps
// the raw response so callers can report exactly what the server said.
type APIError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %s", e.Status)
}
