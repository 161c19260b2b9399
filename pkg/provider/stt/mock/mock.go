// Package mock provides a test double for the stt.Transcriber interface.
package mock

import (
	"context"
	"sync"

	"github.com/wanhafiz/suara/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Req is the TranscribeRequest passed to Transcribe.
	Req stt.TranscribeRequest
}

// Transcriber is a mock implementation of stt.Transcriber.
// Zero values for response fields cause Transcribe to return zero values and
// a nil error. Set Err to inject an error.
type Transcriber struct {
	mu sync.Mutex

	// Response is returned by Transcribe. May be nil (returns nil, nil).
	Response *stt.TranscribeResponse

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeCalls records every invocation of Transcribe in order.
	TranscribeCalls []TranscribeCall
}

var _ stt.Transcriber = (*Transcriber)(nil)

// Transcribe implements stt.Transcriber.
func (t *Transcriber) Transcribe(ctx context.Context, req stt.TranscribeRequest) (*stt.TranscribeResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TranscribeCalls = append(t.TranscribeCalls, TranscribeCall{Ctx: ctx, Req: req})
	return t.Response, t.Err
}

// Calls returns a snapshot of recorded Transcribe invocations.
func (t *Transcriber) Calls() []TranscribeCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TranscribeCall, len(t.TranscribeCalls))
	copy(out, t.TranscribeCalls)
	return out
}
