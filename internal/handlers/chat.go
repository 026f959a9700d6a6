package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Jafar090/CompliBot/internal/metrics"
)

// TurnProcessor handles one chat turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID, utterance string) (string, error)
}

// ChatHandler serves the text turn endpoints (/chat and /process).
type ChatHandler struct {
	engine  TurnProcessor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(engine TurnProcessor, m *metrics.Metrics, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		engine:  engine,
		metrics: m,
		logger:  logger.With("component", "chat_handler"),
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, chatResponse{Response: "Error: only POST is supported on this endpoint."})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "Error: no valid JSON payload received. Please send a valid JSON payload."})
		return
	}

	utterance := strings.TrimSpace(req.Message)
	if utterance == "" {
		utterance = strings.TrimSpace(req.Text)
	}
	if utterance == "" {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "Error: invalid input. Please send a JSON payload with a 'message' or 'text' field."})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := h.engine.ProcessTurn(r.Context(), sessionID, utterance)
	if err != nil {
		h.logger.Error("turn processing failed", "error", err, "session_id", sessionID)
	}

	writeJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Response: reply})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
