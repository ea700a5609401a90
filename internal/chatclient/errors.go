package chatclient

import (
	"fmt"
	"net/http"
)

// StatusError is a non-2xx answer from the chat endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat endpoint returned %d %s", e.Code, http.StatusText(e.Code))
}
