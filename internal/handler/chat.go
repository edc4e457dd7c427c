// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/service"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
	"github.com/capitalize-ai/trip-concierge/pkg/metrics"
)

// JournalReader lists journaled turns of a session.
type JournalReader interface {
	ListTurns(ctx context.Context, sessionID string, afterSequence uint64, limit int) (*model.ListTurnsResponse, error)
}

// ChatHandler handles chat and session endpoints.
type ChatHandler struct {
	turns       *service.TurnService
	journal     JournalReader
	defaultLang model.Language
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler. journal may be nil.
func NewChatHandler(turns *service.TurnService, journal JournalReader, defaultLang model.Language, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		turns:       turns,
		journal:     journal,
		defaultLang: defaultLang,
		logger:      log,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		if status, _ := statusFor(err); status == http.StatusRequestEntityTooLarge {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.turns.HandleTurn(r.Context(), service.TurnRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Language:  req.Language,
	})
	if err != nil {
		h.logFailure(r.Context(), err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ChatStream handles POST /api/v1/chat/stream. The reply arrives as token
// events followed by one turn event.
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.IncrementStreamConnections("sse")
	defer metrics.DecrementStreamConnections("sse")

	resp, err := h.turns.HandleTurn(ctx, service.TurnRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Language:  req.Language,
		OnToken: func(token string, index int) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return sendSSEEvent(w, flusher, "token", &model.TokenEvent{
				Token: token,
				Index: index,
			})
		},
	})
	if err != nil {
		h.logFailure(ctx, err)
		_, code, msg := clientError(err)
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    code,
			Message: msg,
		})
		return
	}

	sendSSEEvent(w, flusher, "turn", resp)
	sendSSEEvent(w, flusher, "done", map[string]bool{"success": true})
}

// Session handles GET /api/v1/sessions/{id}
func (h *ChatHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.turns.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// Reset handles POST /api/v1/sessions/{id}/reset
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, err := h.turns.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(r.Context(), err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// Journal handles GET /api/v1/sessions/{id}/journal
// Supports ?after_sequence=N&limit=M for paging.
func (h *ChatHandler) Journal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotImplemented, "journal disabled")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if err := model.ValidateSessionID(sessionID); err != nil {
		writeServiceError(w, err)
		return
	}

	var afterSequence uint64
	limit := 50
	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.journal.ListTurns(r.Context(), sessionID, afterSequence, limit)
	if err != nil {
		h.logFailure(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type languageInfo struct {
	Code      model.Language `json:"code"`
	Name      string         `json:"name"`
	Direction string         `json:"direction"`
}

// Languages handles GET /api/v1/languages
func (h *ChatHandler) Languages(w http.ResponseWriter, r *http.Request) {
	names := map[model.Language]string{
		model.LanguageEnglish: "English",
		model.LanguageArabic:  "العربية",
	}
	out := make([]languageInfo, 0, len(model.SupportedLanguages))
	for _, lang := range model.SupportedLanguages {
		out = append(out, languageInfo{Code: lang, Name: names[lang], Direction: lang.Direction()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"supported_languages": model.SupportedLanguages,
		"default_language":    h.defaultLang,
		"languages":           out,
	})
}

func (h *ChatHandler) logFailure(ctx context.Context, err error) {
	if status, _ := statusFor(err); status < http.StatusInternalServerError {
		return
	}
	h.logger.WithContext(ctx).Error("turn request failed", zap.Error(err))
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
