package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrSessionExpired means the refresh path gave up: the server refused
	// both the access and the refresh token. The store has been cleared;
	// the caller must log in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrTimeout covers deadline hits: the request or its context timed
	// out. The operation may or may not have reached the server.
	ErrTimeout = errors.New("request timed out")

	// ErrNetwork covers connectivity failures before an HTTP status was
	// received (DNS, refused connection, reset).
	ErrNetwork = errors.New("network error")
)

// APIError is a non-2xx HTTP response, distinct from transport failures.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// classifyTransport maps a transport-level failure onto the taxonomy.
// Timeouts take precedence; anything else that never produced a response
// is a network error.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
