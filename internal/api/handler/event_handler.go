package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/hexlight/portal-notifier/internal/api/middleware"
	"github.com/hexlight/portal-notifier/internal/dispatcher"
	"github.com/hexlight/portal-notifier/internal/domain"
)

// EventHandler receives tracker events from the portal and hands them to
// the dispatcher.
//
// Precondition on every endpoint: the portal posts an event only after its
// own row write has committed. The response's "sent" count is purely
// informational — a zero is still a 200, because notification outcomes
// must never be read as a verdict on the already-committed domain change.
type EventHandler struct {
	d      *dispatcher.Dispatcher
	logger *zap.Logger
}

func NewEventHandler(d *dispatcher.Dispatcher, logger *zap.Logger) *EventHandler {
	return &EventHandler{d: d, logger: logger}
}

type dispatchResponse struct {
	Sent int `json:"sent"`
}

// BugCreated handles POST /api/v1/events/bug-created
func (h *EventHandler) BugCreated(w http.ResponseWriter, r *http.Request) {
	var req domain.BugCreatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		h.warn(r, "bug-created", err)
		mapError(w, err)
		return
	}

	sent := h.d.NotifyNewBug(r.Context(), req.Bug, req.Actor)
	respondJSON(w, http.StatusOK, dispatchResponse{Sent: sent})
}

// BugReassigned handles POST /api/v1/events/bug-reassigned
func (h *EventHandler) BugReassigned(w http.ResponseWriter, r *http.Request) {
	var req domain.BugReassignedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		h.warn(r, "bug-reassigned", err)
		mapError(w, err)
		return
	}

	sent := 0
	if h.d.NotifyReassignment(r.Context(), req.Bug, req.PreviousAssignee) {
		sent = 1
	}
	respondJSON(w, http.StatusOK, dispatchResponse{Sent: sent})
}

// StatusChanged handles POST /api/v1/events/bug-status-changed
func (h *EventHandler) StatusChanged(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		h.warn(r, "bug-status-changed", err)
		mapError(w, err)
		return
	}

	sent := h.d.NotifyStatusChange(r.Context(), req.Bug, req.PreviousStatus)
	respondJSON(w, http.StatusOK, dispatchResponse{Sent: sent})
}

// CommentAdded handles POST /api/v1/events/bug-commented
func (h *EventHandler) CommentAdded(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentAddedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		h.warn(r, "bug-commented", err)
		mapError(w, err)
		return
	}

	sent := h.d.NotifyComment(r.Context(), req.Bug, req.Author)
	respondJSON(w, http.StatusOK, dispatchResponse{Sent: sent})
}

// BugUpdated handles POST /api/v1/events/bug-updated
func (h *EventHandler) BugUpdated(w http.ResponseWriter, r *http.Request) {
	var req domain.BugUpdatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		h.warn(r, "bug-updated", err)
		mapError(w, err)
		return
	}

	sent := 0
	if h.d.NotifyUpdate(r.Context(), req.Bug) {
		sent = 1
	}
	respondJSON(w, http.StatusOK, dispatchResponse{Sent: sent})
}

func (h *EventHandler) warn(r *http.Request, event string, err error) {
	h.logger.Warn("rejected event payload",
		zap.String("event", event),
		zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
		zap.Error(err),
	)
}
