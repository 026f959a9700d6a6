package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jafar090/CompliBot/internal/cache"
	"github.com/Jafar090/CompliBot/internal/llm"
	"github.com/Jafar090/CompliBot/internal/metrics"
)

// maxAudioBytes caps the accepted voice payload size.
const maxAudioBytes = 10 << 20

// Transcriber converts audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// AudioHandler serves /process_audio: transcribe the uploaded audio, then
// process the transcript as a normal chat turn.
type AudioHandler struct {
	engine      TurnProcessor
	transcriber Transcriber
	cache       *cache.Redis
	metrics     *metrics.Metrics
	logger      *slog.Logger
	rateLimit   int64
	rateWindow  time.Duration
}

// NewAudioHandler constructs the handler. cache may be nil, in which case no
// rate limiting is applied.
func NewAudioHandler(engine TurnProcessor, transcriber Transcriber, redis *cache.Redis, m *metrics.Metrics, logger *slog.Logger, rateLimit int64, rateWindow time.Duration) *AudioHandler {
	if rateWindow <= 0 {
		rateWindow = 10 * time.Minute
	}
	return &AudioHandler{
		engine:      engine,
		transcriber: transcriber,
		cache:       redis,
		metrics:     m,
		logger:      logger.With("component", "audio_handler"),
		rateLimit:   rateLimit,
		rateWindow:  rateWindow,
	}
}

type audioResponse struct {
	SessionID     string `json:"session_id"`
	Transcription string `json:"transcription"`
	Response      string `json:"response"`
}

func (h *AudioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, audioResponse{Response: "Error: only POST is supported on this endpoint."})
		return
	}

	// The cap must be in place before any form access parses the body.
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, audioResponse{
				Response: "Error: the audio upload is too large. Please keep voice messages under 10 MB.",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, audioResponse{Response: "Error: expected a multipart form upload."})
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if !h.allowAudioRequest(r.Context(), sessionID) {
		writeJSON(w, http.StatusOK, audioResponse{
			SessionID: sessionID,
			Response:  "You're sending voice messages a bit quickly. Please wait a few minutes or type your message instead.",
		})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, audioResponse{SessionID: sessionID, Response: "Error: no audio file provided."})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		h.metrics.Errors.WithLabelValues("audio_read").Inc()
		writeJSON(w, http.StatusBadRequest, audioResponse{SessionID: sessionID, Response: "Error: the audio upload could not be read."})
		return
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		h.logger.Error("transcription failed", "error", err, "session_id", sessionID)
		reply := "Sorry, I couldn't make out that audio. Could you try again or type your message instead?"
		if !errors.Is(err, llm.ErrTranscription) {
			reply = "Sorry, my speech service is unavailable right now. Please type your message instead."
		}
		writeJSON(w, http.StatusOK, audioResponse{SessionID: sessionID, Response: reply})
		return
	}

	if strings.TrimSpace(transcript) == "" {
		writeJSON(w, http.StatusOK, audioResponse{
			SessionID: sessionID,
			Response:  "The audio came through empty. Could you try again or type your message instead?",
		})
		return
	}

	reply, err := h.engine.ProcessTurn(r.Context(), sessionID, transcript)
	if err != nil {
		h.logger.Error("turn processing failed", "error", err, "session_id", sessionID)
	}

	writeJSON(w, http.StatusOK, audioResponse{
		SessionID:     sessionID,
		Transcription: transcript,
		Response:      reply,
	})
}

func (h *AudioHandler) allowAudioRequest(ctx context.Context, sessionID string) bool {
	if h.cache == nil || h.rateLimit <= 0 {
		return true
	}
	key := fmt.Sprintf("rl:audio:%s", sessionID)
	client := h.cache.Client()
	res := client.Incr(ctx, key)
	if res.Err() != nil {
		h.logger.Warn("rate limit incr failed", "error", res.Err())
		return true
	}
	if res.Val() == 1 {
		client.Expire(ctx, key, h.rateWindow)
	}
	return res.Val() <= h.rateLimit
}
