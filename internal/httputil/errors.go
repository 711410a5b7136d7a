// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "fmt"

// TransportError reports a request that never produced a response:
// connection failure, timeout, or cancellation.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a response with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	const maxBody = 200
	body := string(e.Body)
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.URL, e.StatusCode, body)
}
