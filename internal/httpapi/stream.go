package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// handleStream upgrades the request to a websocket and runs a multi-turn
// conversation over it. Each inbound frame is a JSON [turnRequest]; session_id
// and user_id default to the query parameters when a frame omits them. The
// server answers every frame with a [turnResponse]; a response with
// continue_conversation set is the signal for the client to keep streaming
// the user's answer.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	userID := r.URL.Query().Get("user_id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", slog.String("err", err.Error()))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()
	s.metrics.ActiveStreams.Add(ctx, 1)
	defer s.metrics.ActiveStreams.Add(context.WithoutCancel(ctx), -1)

	s.log.Info("voice stream opened", slog.String("session_id", sessionID))

	for {
		req, err := readTurnFrame(ctx, conn)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "")
				s.log.Info("voice stream closed", slog.String("session_id", sessionID))
				return
			}
			s.log.Warn("voice stream read failed",
				slog.String("session_id", sessionID),
				slog.String("err", err.Error()))
			return
		}

		if req.SessionID == "" {
			req.SessionID = sessionID
		}
		if req.UserID == "" {
			req.UserID = userID
		}

		turnCtx, cancel := context.WithTimeout(ctx, s.turnTimeout)
		resp, err := s.processTurn(turnCtx, req)
		cancel()
		if err != nil {
			var te *turnError
			if errors.As(err, &te) {
				if writeErr := writeFrame(ctx, conn, errorResponse{Error: te.msg}); writeErr != nil {
					return
				}
				continue
			}
			s.log.Warn("voice stream turn failed",
				slog.String("session_id", sessionID),
				slog.String("err", err.Error()))
			return
		}

		if err := writeFrame(ctx, conn, resp); err != nil {
			s.log.Warn("voice stream write failed",
				slog.String("session_id", sessionID),
				slog.String("err", err.Error()))
			return
		}
	}
}

// readTurnFrame reads and decodes one inbound JSON frame.
func readTurnFrame(ctx context.Context, conn *websocket.Conn) (turnRequest, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return turnRequest{}, err
	}
	var req turnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return turnRequest{}, err
	}
	return req, nil
}

// writeFrame marshals v and sends it as a text frame.
func writeFrame(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
