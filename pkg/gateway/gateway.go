// Package gateway is the boundary to the generative-language provider. The
// rest of the service depends only on the Client interface; the concrete
// implementation is a thin relay to the provider's HTTP endpoint.
package gateway

import "context"

// Client turns a prompt into a generated reply. A non-nil error is either
// an *APIError (the provider returned a structured error message) or a
// transport failure (unreachable endpoint, bad payload).
type Client interface {
	Generate(ctx context.Context, text string) (string, error)
}

// APIError is an application error reported by the provider itself, as
// opposed to a transport failure. Its message is safe to surface verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }
