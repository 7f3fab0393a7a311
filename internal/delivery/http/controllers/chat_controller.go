package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"spontimeet/internal/delivery/http/helpers"
	"spontimeet/internal/delivery/http/middleware"
	"spontimeet/internal/domain"
)

type ChatController struct {
	Logger  *slog.Logger
	Service domain.ChatService
}

func NewChatController(logger *slog.Logger, svc domain.ChatService) *ChatController {
	return &ChatController{
		Logger:  logger,
		Service: svc,
	}
}

// MessageHistorySuccessResponse is the success response envelope for GET /activities/{activityID}/messages (200).
type MessageHistorySuccessResponse struct {
	Data  []*domain.MessageWithSender `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// MessageHistory godoc
// @Summary Get the message history of an activity room
// @Description Returns the full message log for the activity's chat room in send order, each message with its sender summary.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID"
// @Success 200 {object} controllers.MessageHistorySuccessResponse "data is an array of messages with sender summaries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/{activityID}/messages [get]
func (c *ChatController) MessageHistory(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if activityID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing activityID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	messages, err := c.Service.History(r.Context(), activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if messages == nil {
		messages = []*domain.MessageWithSender{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, messages)
}
