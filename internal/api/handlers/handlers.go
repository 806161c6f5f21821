// Package handlers implements the HTTP endpoints of the chat API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/finbotdev/finbot/internal/api/middleware"
	"github.com/finbotdev/finbot/internal/bot"
	"github.com/finbotdev/finbot/internal/store"
)

// ChatHandler turns one HTTP request into one bot turn.
type ChatHandler struct {
	core *bot.Core
	log  zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(core *bot.Core, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{core: core, log: log}
}

type chatRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type chatResponse struct {
	Reply        string `json:"reply"`
	ArtifactPath string `json:"artifact_path,omitempty"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" || req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id and message are required")
		return
	}
	if req.Username == "" {
		req.Username = req.UserID
	}

	reply := h.core.Process(r.Context(), req.UserID, req.Username, req.Message)
	middleware.WriteJSON(w, http.StatusOK, chatResponse{
		Reply:        reply.Text,
		ArtifactPath: reply.ArtifactPath,
	})
}

// RemindersHandler exposes the reminder list for external schedulers.
type RemindersHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewRemindersHandler creates a new reminders handler.
func NewRemindersHandler(st *store.Store, log zerolog.Logger) *RemindersHandler {
	return &RemindersHandler{store: st, log: log}
}

// List handles GET /api/reminders?user_id=...
func (h *RemindersHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	includeCompleted := r.URL.Query().Get("include_completed") == "true"
	reminders, err := h.store.Reminders(r.Context(), userID, includeCompleted)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list reminders")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list reminders")
		return
	}

	type reminderView struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		DueDate   string `json:"due_date"`
		Category  string `json:"category"`
		Completed bool   `json:"completed"`
	}
	views := make([]reminderView, 0, len(reminders))
	for _, rem := range reminders {
		views = append(views, reminderView{
			ID:        rem.ID,
			Text:      rem.Text,
			DueDate:   rem.DueDate,
			Category:  rem.Category,
			Completed: rem.Completed,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": views,
		"count":     len(views),
	})
}
