package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wanhafiz/suara/internal/dialog"
	"github.com/wanhafiz/suara/pkg/provider/stt"
)

// turnRequest is one conversation turn. Exactly one of Text or AudioB64 must
// be set.
type turnRequest struct {
	// SessionID identifies the conversation. Concurrent sessions never share
	// dialogue state.
	SessionID string `json:"session_id"`

	// UserID is the IC number selecting the profile whose language preference
	// and aid records the turn uses.
	UserID string `json:"user_id"`

	// Text is a pre-transcribed utterance.
	Text string `json:"text,omitempty"`

	// AudioB64 is a base64-encoded WAV utterance to transcribe server-side.
	AudioB64 string `json:"audio_b64,omitempty"`

	// SampleRate is the audio sample rate in Hz. Zero selects 16000.
	SampleRate int `json:"sample_rate,omitempty"`

	// LanguageHint optionally forces the transcription language. Leave empty
	// for auto-detection.
	LanguageHint string `json:"language_hint,omitempty"`
}

// turnResponse mirrors [dialog.Turn] plus the transcript the machine saw.
type turnResponse struct {
	Transcript           string `json:"transcript"`
	Reply                string `json:"reply"`
	Lang                 string `json:"lang"`
	ContinueConversation bool   `json:"continue_conversation"`
	NavigateTo           string `json:"navigate_to,omitempty"`
}

// resetRequest identifies the session to drop back to idle.
type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Text == "" && req.AudioB64 == "" {
		s.writeError(w, http.StatusBadRequest, "one of text or audio_b64 is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.turnTimeout)
	defer cancel()

	resp, err := s.processTurn(ctx, req)
	if err != nil {
		var te *turnError
		if errors.As(err, &te) {
			s.writeError(w, te.status, te.msg)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	before := s.sessions.Len()
	s.machine.Reset(req.SessionID)
	s.metrics.ActiveSessions.Add(r.Context(), int64(s.sessions.Len()-before))

	w.WriteHeader(http.StatusNoContent)
}

// turnError carries an HTTP status alongside a client-safe message.
type turnError struct {
	status int
	msg    string
}

func (e *turnError) Error() string { return e.msg }

// processTurn runs the full voice pipeline for one request: transcription
// (when audio is supplied), term normalisation, hallucination filtering, and
// the dialogue machine. It is shared by the turn endpoint and the websocket
// stream.
func (s *Server) processTurn(ctx context.Context, req turnRequest) (turnResponse, error) {
	start := time.Now()

	text, err := s.resolveTranscript(ctx, req)
	if err != nil {
		return turnResponse{}, err
	}

	stepBefore := s.sessions.Get(req.SessionID).Step
	if stepBefore == "" {
		stepBefore = dialog.StepIdle
	}

	before := s.sessions.Len()
	turn := s.machine.ProcessTurn(ctx, req.SessionID, req.UserID, text)
	s.metrics.ActiveSessions.Add(ctx, int64(s.sessions.Len()-before))

	s.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
	s.metrics.RecordTurn(ctx, string(stepBefore), string(turn.Lang))
	if turn.NavigateTo != "" {
		s.metrics.RecordNavigation(ctx, turn.NavigateTo)
	}

	return turnResponse{
		Transcript:           text,
		Reply:                turn.Reply,
		Lang:                 string(turn.Lang),
		ContinueConversation: turn.ContinueConversation,
		NavigateTo:           turn.NavigateTo,
	}, nil
}

// resolveTranscript produces the cleaned utterance text for a request:
// pre-transcribed text passes through the normaliser and hallucination filter
// unchanged in shape; audio is transcribed first.
func (s *Server) resolveTranscript(ctx context.Context, req turnRequest) (string, error) {
	raw := req.Text
	if req.AudioB64 != "" {
		if s.transcriber == nil {
			return "", &turnError{http.StatusServiceUnavailable, "no transcription provider configured"}
		}
		audio, err := base64.StdEncoding.DecodeString(req.AudioB64)
		if err != nil {
			return "", &turnError{http.StatusBadRequest, "audio_b64 is not valid base64"}
		}

		sampleRate := req.SampleRate
		if sampleRate == 0 {
			sampleRate = 16000
		}

		sttStart := time.Now()
		resp, err := s.transcriber.Transcribe(ctx, stt.TranscribeRequest{
			Audio:        audio,
			SampleRate:   sampleRate,
			LanguageHint: req.LanguageHint,
		})
		s.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds())
		if err != nil {
			s.metrics.RecordProviderError(ctx, "stt", "transcribe")
			s.log.Warn("transcription failed",
				slog.String("session_id", req.SessionID),
				slog.String("err", err.Error()))
			return "", &turnError{http.StatusBadGateway, "transcription failed"}
		}
		raw = resp.Text
	}

	normalized := s.normalizer.Normalize(raw)
	if hallucinated, _ := s.detector.Detect(normalized); hallucinated {
		s.metrics.HallucinationsDetected.Add(ctx, 1)
		s.log.Debug("degenerate transcript filtered",
			slog.String("session_id", req.SessionID))
	}
	return s.detector.Clean(normalized), nil
}
