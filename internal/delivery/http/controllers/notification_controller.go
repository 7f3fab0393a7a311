package controllers

import (
	"log/slog"
	"net/http"

	"spontimeet/internal/delivery/http/helpers"
	"spontimeet/internal/delivery/http/middleware"
	"spontimeet/internal/domain"
)

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.ActivityService
}

func NewNotificationController(logger *slog.Logger, svc domain.ActivityService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListJoinRequestsSuccessResponse is the success response envelope for GET /notifications/requests (200).
type ListJoinRequestsSuccessResponse struct {
	Data  []*domain.JoinRequestNotification `json:"data"`
	Error *helpers.APIError                 `json:"error"`
}

// ListJoinRequests godoc
// @Summary List incoming join requests across hosted activities
// @Description Returns all pending join requests for activities the authenticated user hosts, with activity titles and requester summaries. Decided requests do not appear.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListJoinRequestsSuccessResponse "data is an array of join request notifications"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/requests [get]
func (c *NotificationController) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	notifications, err := c.Service.IncomingRequests(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if notifications == nil {
		notifications = []*domain.JoinRequestNotification{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, notifications)
}
