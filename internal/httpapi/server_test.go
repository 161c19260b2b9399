package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/wanhafiz/suara/internal/dialog"
	"github.com/wanhafiz/suara/internal/dialog/intent"
	"github.com/wanhafiz/suara/internal/observe"
	profilemock "github.com/wanhafiz/suara/internal/profile/mock"
	"github.com/wanhafiz/suara/internal/reply"
	"github.com/wanhafiz/suara/internal/voiceprint"
	"github.com/wanhafiz/suara/pkg/provider/stt"
	sttmock "github.com/wanhafiz/suara/pkg/provider/stt/mock"
)

// newTestServer wires a Server over the keyword classifier and in-memory
// stores so tests exercise the real pipeline without a model or database.
func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	sessions := dialog.NewStore()
	machine := dialog.NewMachine(
		intent.NewKeywordClassifier(),
		sessions,
		&profilemock.Store{},
		reply.DefaultCatalog,
	)

	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	opts = append([]Option{WithMetrics(metrics)}, opts...)
	return NewServer(machine, sessions, opts...)
}

// postJSON sends v to path on the handler and returns the recorder.
func postJSON(t *testing.T, handler http.Handler, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) turnResponse {
	t.Helper()
	var resp turnResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestTurn_TextSTRStatus(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/v1/voice/turn", turnRequest{
		SessionID: "sess-1",
		UserID:    "900112233445",
		Text:      "saya nak cek str",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeTurn(t, rec)

	if !strings.Contains(resp.Reply, "RM500") {
		t.Errorf("reply = %q, want next payment amount", resp.Reply)
	}
	if !resp.ContinueConversation {
		t.Error("ContinueConversation = false, want true for navigation offer")
	}
	if resp.Lang != "BM" {
		t.Errorf("lang = %q, want BM", resp.Lang)
	}
	if resp.Transcript != "saya nak cek str" {
		t.Errorf("transcript = %q", resp.Transcript)
	}
}

func TestTurn_NavigationRoundTrip(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	postJSON(t, h, "/v1/voice/turn", turnRequest{
		SessionID: "sess-nav", UserID: "u1", Text: "nak tengok baki mykasih",
	})
	rec := postJSON(t, h, "/v1/voice/turn", turnRequest{
		SessionID: "sess-nav", UserID: "u1", Text: "ya",
	})

	resp := decodeTurn(t, rec)
	if resp.NavigateTo != "/sara" {
		t.Errorf("navigate_to = %q, want /sara", resp.NavigateTo)
	}
}

func TestTurn_AudioTranscribed(t *testing.T) {
	transcriber := &sttmock.Transcriber{
		Response: &stt.TranscribeResponse{Text: "nak tengok baki mykasih", Language: "ms"},
	}
	s := newTestServer(t, WithTranscriber(transcriber))

	audio := []byte{0x52, 0x49, 0x46, 0x46, 0x01, 0x02}
	rec := postJSON(t, s.Handler(), "/v1/voice/turn", turnRequest{
		SessionID: "sess-audio",
		UserID:    "u1",
		AudioB64:  base64.StdEncoding.EncodeToString(audio),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeTurn(t, rec)
	if !strings.Contains(resp.Reply, "RM50") {
		t.Errorf("reply = %q, want MyKasih balance", resp.Reply)
	}

	calls := transcriber.Calls()
	if len(calls) != 1 {
		t.Fatalf("transcribe calls = %d, want 1", len(calls))
	}
	if !bytes.Equal(calls[0].Req.Audio, audio) {
		t.Error("transcriber did not receive the decoded audio payload")
	}
	if calls[0].Req.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want default 16000", calls[0].Req.SampleRate)
	}
	if calls[0].Req.LanguageHint != "" {
		t.Errorf("language hint = %q, want auto-detect", calls[0].Req.LanguageHint)
	}
}

func TestTurn_HallucinatedAudioBecomesEmptyInput(t *testing.T) {
	transcriber := &sttmock.Transcriber{
		Response: &stt.TranscribeResponse{Text: strings.Repeat("a", 40)},
	}
	s := newTestServer(t, WithTranscriber(transcriber))

	rec := postJSON(t, s.Handler(), "/v1/voice/turn", turnRequest{
		SessionID: "sess-h",
		UserID:    "u1",
		AudioB64:  base64.StdEncoding.EncodeToString([]byte("wav")),
	})

	resp := decodeTurn(t, rec)
	if resp.Transcript != "" {
		t.Errorf("transcript = %q, want empty after filtering", resp.Transcript)
	}
	if !strings.Contains(resp.Reply, "tidak dengar") {
		t.Errorf("reply = %q, want empty-input message", resp.Reply)
	}
}

func TestTurn_TranscriberErrorIs502(t *testing.T) {
	transcriber := &sttmock.Transcriber{Err: errors.New("server busy")}
	s := newTestServer(t, WithTranscriber(transcriber))

	rec := postJSON(t, s.Handler(), "/v1/voice/turn", turnRequest{
		SessionID: "sess-e",
		UserID:    "u1",
		AudioB64:  base64.StdEncoding.EncodeToString([]byte("wav")),
	})

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestTurn_AudioWithoutTranscriber(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.Handler(), "/v1/voice/turn", turnRequest{
		SessionID: "sess-n",
		UserID:    "u1",
		AudioB64:  base64.StdEncoding.EncodeToString([]byte("wav")),
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestTurn_Validation(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name string
		req  turnRequest
	}{
		{"missing session_id", turnRequest{UserID: "u1", Text: "hello"}},
		{"neither text nor audio", turnRequest{SessionID: "s", UserID: "u1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h, "/v1/voice/turn", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/voice/turn",
			strings.NewReader(`{"session_id":"s","text":"hi","bogus":1}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestReset_DropsSession(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	// Put the session mid-flow, then reset it.
	postJSON(t, h, "/v1/voice/turn", turnRequest{
		SessionID: "sess-r", UserID: "u1", Text: "saya nak cek str",
	})
	if s.sessions.Len() != 1 {
		t.Fatalf("sessions = %d, want 1 before reset", s.sessions.Len())
	}

	rec := postJSON(t, h, "/v1/voice/reset", resetRequest{SessionID: "sess-r"})
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if s.sessions.Len() != 0 {
		t.Errorf("sessions = %d, want 0 after reset", s.sessions.Len())
	}

	// Resetting again is a no-op, not an error.
	rec = postJSON(t, h, "/v1/voice/reset", resetRequest{SessionID: "sess-r"})
	if rec.Code != http.StatusNoContent {
		t.Errorf("repeat status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

// memPrints is an in-memory voiceprint store.
type memPrints struct {
	prints map[string][]float32
}

func (m *memPrints) Save(_ context.Context, ic string, embedding []float32) error {
	if m.prints == nil {
		m.prints = make(map[string][]float32)
	}
	m.prints[ic] = embedding
	return nil
}

func (m *memPrints) Load(_ context.Context, ic string) ([]float32, error) {
	e, ok := m.prints[ic]
	if !ok {
		return nil, voiceprint.ErrNotEnrolled
	}
	return e, nil
}

func testEmbedding(seed float32) []float32 {
	e := make([]float32, voiceprint.EmbeddingDim)
	for i := range e {
		e[i] = seed + float32(i)*0.01
	}
	return e
}

func TestVoiceprint_EnrollAndVerify(t *testing.T) {
	matcher := voiceprint.NewMatcher(&memPrints{}, 0)
	s := newTestServer(t, WithMatcher(matcher))
	h := s.Handler()

	emb := testEmbedding(0.5)

	rec := postJSON(t, h, "/v1/voiceprint/enroll", voiceprintRequest{IC: "900112233445", Embedding: emb})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("enroll status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h, "/v1/voiceprint/verify", voiceprintRequest{IC: "900112233445", Embedding: emb})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp verifyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Authenticated {
		t.Errorf("authenticated = false, similarity = %v", resp.Similarity)
	}
}

func TestVoiceprint_NotEnrolled(t *testing.T) {
	matcher := voiceprint.NewMatcher(&memPrints{}, 0)
	s := newTestServer(t, WithMatcher(matcher))

	rec := postJSON(t, s.Handler(), "/v1/voiceprint/verify",
		voiceprintRequest{IC: "999", Embedding: testEmbedding(0.1)})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestVoiceprint_WrongDimension(t *testing.T) {
	matcher := voiceprint.NewMatcher(&memPrints{}, 0)
	s := newTestServer(t, WithMatcher(matcher))

	rec := postJSON(t, s.Handler(), "/v1/voiceprint/enroll",
		voiceprintRequest{IC: "900112233445", Embedding: []float32{1, 2, 3}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestVoiceprint_NotConfigured(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.Handler(), "/v1/voiceprint/verify",
		voiceprintRequest{IC: "1", Embedding: testEmbedding(0.1)})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandler_HealthAndMetricsRoutes(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
