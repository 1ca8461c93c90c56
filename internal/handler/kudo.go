package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/kudos-board/internal/apperror"
	"github.com/sakif/kudos-board/internal/auth"
	"github.com/sakif/kudos-board/internal/model"
	"github.com/sakif/kudos-board/internal/service"
)

// KudoHandler serves the feed, kudo creation and moderation.
type KudoHandler struct {
	kudos  *service.KudoService
	logger *slog.Logger
}

// NewKudoHandler creates a KudoHandler.
func NewKudoHandler(kudos *service.KudoService, logger *slog.Logger) *KudoHandler {
	return &KudoHandler{kudos: kudos, logger: logger}
}

// createKudoRequest is the POST /api/kudos body.
//
// FromUserID is decoded only to notice clients that try to set it. The
// sender is always the authenticated caller.
type createKudoRequest struct {
	ToUserID   string `json:"toUserId"`
	Message    string `json:"message"`
	Category   string `json:"category"`
	FromUserID string `json:"fromUserId,omitempty"`
}

// hideResponse is the POST /api/kudos/{id}/hide body.
type hideResponse struct {
	Success bool `json:"success"`
}

// HandleList returns the feed: visible kudos with sender and recipient.
//
// HTTP: GET /api/kudos
func (h *KudoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	kudos, err := h.kudos.Feed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kudos)
}

// HandleCreate posts a kudo from the caller.
//
// HTTP: POST /api/kudos
// REQUEST BODY: {"toUserId":"seed_2","message":"Great work on the launch!","category":"Teamwork"}
// RESPONSE: 201 with the stored kudo
func (h *KudoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Unauthorized"))
		return
	}

	var req createKudoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.FromUserID != "" && req.FromUserID != callerID {
		h.logger.Warn("ignoring client-supplied sender",
			slog.String("callerID", callerID),
			slog.String("fromUserId", req.FromUserID),
		)
	}

	k, err := h.kudos.Create(r.Context(), callerID, model.NewKudo{
		ToUserID: req.ToUserID,
		Message:  req.Message,
		Category: model.Category(req.Category),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, k)
}

// HandleHide removes a kudo from the feed.
//
// HTTP: POST /api/kudos/{id}/hide
// RESPONSE: {"success":true}, also for ids that do not exist
func (h *KudoHandler) HandleHide(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Unauthorized"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "Invalid kudo id"))
		return
	}

	if err := h.kudos.Hide(r.Context(), callerID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hideResponse{Success: true})
}
