// Package failure classifies backend errors into the categories users see.
package failure

import (
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Category is a coarse failure class.
type Category int

const (
	Other Category = iota
	Quota
	Offline
)

func (c Category) String() string {
	switch c {
	case Quota:
		return "quota"
	case Offline:
		return "offline"
	default:
		return "other"
	}
}

// UserMessage is the text shown to a chat user for this category.
func (c Category) UserMessage() string {
	switch c {
	case Quota:
		return "😔 Sorry, you've exhausted our free message limit for today. Limit resets at **12:30 PM IST**."
	case Offline:
		return "⚠️ Backend server is offline. Please try again after restarting the app."
	default:
		return "⚠️ Something unexpected happened. Please try again in a moment."
	}
}

// HTTPStatus maps the category to the status the chat endpoint answers with.
func (c Category) HTTPStatus() int {
	switch c {
	case Quota:
		return http.StatusTooManyRequests
	case Offline:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Classify inspects err for quota and connectivity failures coming from the
// model SDKs, Google APIs, gRPC and the network stack.
func Classify(err error) Category {
	if err == nil {
		return Other
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return FromStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return FromStatus(reqErr.HTTPStatusCode)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return FromStatus(gErr.Code)
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.ResourceExhausted:
			return Quota
		case codes.Unavailable:
			return Offline
		}
		return Other
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return Offline
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return Offline
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Offline
	}
	return Other
}

// FromStatus classifies an HTTP status code.
func FromStatus(code int) Category {
	switch code {
	case http.StatusTooManyRequests:
		return Quota
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return Offline
	default:
		return Other
	}
}
