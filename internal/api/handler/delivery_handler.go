package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/store"
)

// DeliveryHandler exposes the send-attempt trail for support debugging
// ("did Mira actually get pinged about bug 42?").
type DeliveryHandler struct {
	deliveries store.DeliveryRepository
	logger     *zap.Logger
}

func NewDeliveryHandler(deliveries store.DeliveryRepository, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, logger: logger}
}

// ListByBug handles GET /api/v1/deliveries/bug/{id}
func (h *DeliveryHandler) ListByBug(w http.ResponseWriter, r *http.Request) {
	bugID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || bugID <= 0 {
		respondError(w, http.StatusBadRequest, "bug id must be a positive number")
		return
	}

	deliveries, err := h.deliveries.ListByBug(r.Context(), bugID)
	if err != nil {
		h.logger.Error("list deliveries failed", zap.Int("bug_id", bugID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list deliveries")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"bug_id":     bugID,
		"deliveries": deliveries,
		"total":      len(deliveries),
	})
}
