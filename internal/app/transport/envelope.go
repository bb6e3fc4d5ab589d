/*
Package transport sends requests to the message provider.

The core only depends on the Sender interface and its uniform Envelope; HTTPSender is the
production implementation. A request is attempted exactly once: failures, including
timeouts, come back as an Envelope with Success false and are never retried.
*/
package transport

import "context"

// Envelope is the uniform result of one provider call.
type Envelope struct {
	// Success is true for 200 <= Status < 400.
	Success bool

	// Status is the HTTP status, or 0 when the request never got a response.
	Status int

	// Body is the decoded JSON body (map[string]any, []any, string, float64, bool) or nil.
	Body any

	// Error describes a transport failure; empty when a response arrived.
	Error string
}

// Failure returns what a failed envelope should report: the body when one was decoded,
// otherwise the transport error text.
func (e Envelope) Failure() any {
	if e.Body != nil {
		return e.Body
	}
	if e.Error != "" {
		return e.Error
	}
	return nil
}

// Sender performs one provider request. data is JSON-encoded as the body when non-empty;
// headers are merged over the defaults.
type Sender interface {
	Send(ctx context.Context, uri string, method string, data map[string]any, headers map[string]string) Envelope
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, uri string, method string, data map[string]any, headers map[string]string) Envelope

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, uri string, method string, data map[string]any, headers map[string]string) Envelope {
	return f(ctx, uri, method, data, headers)
}
