package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Veraticus/finnet/internal/model"
)

// Advisory classifier errors.
var (
	// ErrUnparseable indicates the provider answered but no known code could be extracted.
	ErrUnparseable = errors.New("unparseable advisory response")
	// ErrMalformedResponse indicates the provider's envelope could not be decoded.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// StatusError reports a non-success HTTP status from a provider.
type StatusError struct {
	Provider string
	Body     string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Code, e.Body)
}

// classifyFailure maps a provider error onto an advisory failure kind.
func classifyFailure(err error) model.AdvisoryFailure {
	if err == nil {
		return model.FailureNone
	}

	if errors.Is(err, ErrUnparseable) || errors.Is(err, ErrMalformedResponse) {
		return model.FailureBadResponse
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailureTimeout
	}

	return model.FailureNetwork
}
