// Package whisper provides an stt.Transcriber backed by a whisper.cpp server
// (or any compatible HTTP service exposing POST /inference with a multipart
// audio file).
//
// Usage:
//
//	t := whisper.New("http://localhost:8080")
//	resp, err := t.Transcribe(ctx, stt.TranscribeRequest{Audio: wav, SampleRate: 16000})
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/wanhafiz/suara/pkg/provider/stt"
)

// defaultTimeout bounds a single inference call. Utterances are a few seconds
// of audio; a healthy server answers well within this.
const defaultTimeout = 60 * time.Second

// Transcriber implements stt.Transcriber against a whisper server.
type Transcriber struct {
	baseURL string
	client  *http.Client
}

var _ stt.Transcriber = (*Transcriber)(nil)

// Option configures a [Transcriber].
type Option func(*Transcriber)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transcriber) {
		t.client = client
	}
}

// New creates a Transcriber talking to the whisper server at baseURL.
func New(baseURL string, opts ...Option) *Transcriber {
	t := &Transcriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// inferenceResponse is the whisper server's JSON reply.
type inferenceResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

// Transcribe implements stt.Transcriber. An empty LanguageHint is sent as
// "auto" so the server detects the spoken language itself.
func (t *Transcriber) Transcribe(ctx context.Context, req stt.TranscribeRequest) (*stt.TranscribeResponse, error) {
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("whisper: empty audio payload")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return nil, fmt.Errorf("whisper: build request: %w", err)
	}
	if _, err := fw.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("whisper: build request: %w", err)
	}

	language := req.LanguageHint
	if language == "" {
		language = "auto"
	}
	if err := mw.WriteField("language", language); err != nil {
		return nil, fmt.Errorf("whisper: build request: %w", err)
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return nil, fmt.Errorf("whisper: build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("whisper: build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("whisper: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper: inference call: %w", err)
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("whisper: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper: server returned %s: %s", httpResp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("whisper: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("whisper: server error: %s", parsed.Error)
	}

	return &stt.TranscribeResponse{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.Language,
	}, nil
}
