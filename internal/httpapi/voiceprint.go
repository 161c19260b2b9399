package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wanhafiz/suara/internal/voiceprint"
)

// voiceprintRequest carries a speaker embedding for enrollment or
// verification. The embedding comes from the client-side extractor model and
// must have exactly [voiceprint.EmbeddingDim] dimensions.
type voiceprintRequest struct {
	IC        string    `json:"ic"`
	Embedding []float32 `json:"embedding"`
}

// verifyResponse is the outcome of one voiceprint verification.
type verifyResponse struct {
	Authenticated bool    `json:"authenticated"`
	Similarity    float64 `json:"similarity"`
	Margin        float64 `json:"margin"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeVoiceprint(w, r)
	if !ok {
		return
	}

	if err := s.matcher.Enroll(r.Context(), req.IC, req.Embedding); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info("voiceprint enrolled", slog.String("ic", req.IC))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeVoiceprint(w, r)
	if !ok {
		return
	}

	result, err := s.matcher.Verify(r.Context(), req.IC, req.Embedding)
	switch {
	case errors.Is(err, voiceprint.ErrNotEnrolled):
		s.writeError(w, http.StatusNotFound, "user not enrolled")
		return
	case err != nil:
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, verifyResponse{
		Authenticated: result.Authenticated,
		Similarity:    result.Similarity,
		Margin:        result.Margin,
	})
}

// decodeVoiceprint parses and validates the shared enroll/verify request
// shape. On failure it writes the error response and returns ok=false.
func (s *Server) decodeVoiceprint(w http.ResponseWriter, r *http.Request) (voiceprintRequest, bool) {
	if s.matcher == nil {
		s.writeError(w, http.StatusServiceUnavailable, "voiceprint storage not configured")
		return voiceprintRequest{}, false
	}

	var req voiceprintRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return voiceprintRequest{}, false
	}
	if req.IC == "" {
		s.writeError(w, http.StatusBadRequest, "ic is required")
		return voiceprintRequest{}, false
	}
	if len(req.Embedding) == 0 {
		s.writeError(w, http.StatusBadRequest, "embedding is required")
		return voiceprintRequest{}, false
	}
	return req, true
}
