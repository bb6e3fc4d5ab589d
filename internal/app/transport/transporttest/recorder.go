// Package transporttest provides a recording transport.Sender for tests.
package transporttest

import (
	"context"
	"sync"

	"anychat/internal/app/transport"
)

// Call is one recorded request.
type Call struct {
	URI     string
	Method  string
	Data    map[string]any
	Headers map[string]string
}

// Recorder replays queued envelopes in order and records every call.
// When the queue is empty it answers 200 with a nil body.
type Recorder struct {
	mu        sync.Mutex
	calls     []Call
	responses []transport.Envelope
}

// New returns a Recorder that will answer with responses in order.
func New(responses ...transport.Envelope) *Recorder {
	return &Recorder{responses: responses}
}

// OK builds a successful envelope with status 200.
func OK(body any) transport.Envelope {
	return transport.Envelope{Success: true, Status: 200, Body: body}
}

// Fail builds a failed envelope.
func Fail(status int, body any) transport.Envelope {
	return transport.Envelope{Success: false, Status: status, Body: body}
}

// Queue appends responses.
func (r *Recorder) Queue(responses ...transport.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, responses...)
}

// Send implements transport.Sender.
func (r *Recorder) Send(_ context.Context, uri string, method string, data map[string]any, headers map[string]string) transport.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	if method == "" {
		method = "GET"
	}
	r.calls = append(r.calls, Call{URI: uri, Method: method, Data: data, Headers: headers})

	if len(r.responses) == 0 {
		return OK(nil)
	}
	next := r.responses[0]
	r.responses = r.responses[1:]
	return next
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent call, or a zero Call.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}
