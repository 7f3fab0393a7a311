package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"spontimeet/internal/delivery/http/controllers"
	"spontimeet/internal/delivery/ws"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps handlers that need an authenticated user.
func NewRouter(
	activityController *controllers.ActivityController,
	notificationController *controllers.NotificationController,
	chatController *controllers.ChatController,
	wsHandler *ws.Handler,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Activities
	mux.HandleFunc("POST /activities", requireAuth(activityController.CreateActivity))
	mux.HandleFunc("GET /activities", requireAuth(activityController.ListActivities))
	mux.HandleFunc("GET /activities/nearby", requireAuth(activityController.ListNearby))
	mux.HandleFunc("GET /activities/mine", requireAuth(activityController.ListMine))

	// Admission
	mux.HandleFunc("POST /activities/{activityID}/join", requireAuth(activityController.JoinActivity))
	mux.HandleFunc("POST /activities/{activityID}/requests", requireAuth(activityController.DecideRequest))
	mux.HandleFunc("GET /activities/{activityID}/requests", requireAuth(activityController.ListPendingRequests))

	// Chat
	mux.HandleFunc("GET /activities/{activityID}/messages", requireAuth(chatController.MessageHistory))
	mux.HandleFunc("GET /ws", requireAuth(wsHandler.ServeWS))

	// Notifications
	mux.HandleFunc("GET /notifications/requests", requireAuth(notificationController.ListJoinRequests))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
