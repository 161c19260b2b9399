// Package stt defines the Transcriber interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (e.g., a local Whisper server
// or a cloud API) and exposes a uniform batch interface: one utterance of raw
// audio in, one transcript out. Voice turns are short (a sentence or two), so
// no streaming surface is offered.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// TranscribeRequest carries one utterance of audio for transcription.
type TranscribeRequest struct {
	// Audio is the raw audio payload, WAV-encoded mono PCM.
	Audio []byte

	// SampleRate is the audio sample rate in Hz. 16000 is the value the
	// transcription models are trained on.
	SampleRate int

	// LanguageHint is an optional language code (e.g., "ms", "en"). Leave it
	// empty to let the model auto-detect: forcing a wrong language on
	// multilingual speakers provokes degenerate looping output, so callers
	// should hint only when the speaker's language is certain.
	LanguageHint string
}

// TranscribeResponse is the result of one transcription.
type TranscribeResponse struct {
	// Text is the raw transcript. Callers are expected to run it through
	// hallucination filtering before acting on it.
	Text string

	// Language is the language the model detected or was told to use, when
	// the backend reports it.
	Language string
}

// Transcriber is the abstraction over any speech-to-text backend.
//
// Implementations must be safe for concurrent use from multiple goroutines
// and must propagate context cancellation promptly.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error)
}
