package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spontimeet/internal/delivery/http/helpers"
	"spontimeet/internal/delivery/http/middleware"
	"spontimeet/internal/domain"
)

// LocationRequest is the GeoJSON-style location in activity payloads.
// Coordinates are [longitude, latitude].
type LocationRequest struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	AddressName string    `json:"addressName"`
}

// CreateActivityRequest is the request body for POST /activities.
type CreateActivityRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Location    LocationRequest `json:"location"`
	Time        time.Time       `json:"time"`
	Capacity    int             `json:"capacity"`
}

// Validate implements Validator.
func (c CreateActivityRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if !domain.ValidCategory(domain.Category(c.Category)) {
		errs = append(errs, "category must be one of coffee, game, study, walk, sports, chat")
	}
	if len(c.Location.Coordinates) != 2 {
		errs = append(errs, "location.coordinates must be [longitude, latitude]")
	}
	if c.Time.IsZero() {
		errs = append(errs, "time is required")
	}
	if c.Capacity < 0 || c.Capacity > domain.MaxCapacity {
		errs = append(errs, "capacity must be between 0 and 64")
	}
	return errs
}

// CreateActivitySuccessResponse is the success response envelope for POST /activities (201).
type CreateActivitySuccessResponse struct {
	Data  *domain.ActivityWithHost `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type ActivityController struct {
	Logger  *slog.Logger
	Service domain.ActivityService
}

func NewActivityController(logger *slog.Logger, svc domain.ActivityService) *ActivityController {
	return &ActivityController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateActivity godoc
// @Summary Create a new activity
// @Description Create a spontaneous activity at a location. The authenticated user becomes the host and is never a participant. Capacity 0 means the default of 4.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activity body CreateActivityRequest true "Activity data"
// @Success 201 {object} controllers.CreateActivitySuccessResponse "data contains the created activity with host summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities [post]
func (c *ActivityController) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	out, err := c.Service.Create(r.Context(), hostID, domain.CreateActivityInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Location: domain.Location{
			Type:        req.Location.Type,
			Coordinates: req.Location.Coordinates,
			AddressName: req.Location.AddressName,
		},
		Time:     req.Time,
		Capacity: req.Capacity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, out)
}

// ListActivitiesResponse is the data payload for GET /activities (200).
type ListActivitiesResponse struct {
	Items      []*domain.ActivityWithHost `json:"items"`
	Pagination helpers.PaginationMeta     `json:"pagination"`
}

// ListActivitiesSuccessResponse is the success response envelope for GET /activities (200).
type ListActivitiesSuccessResponse struct {
	Data  ListActivitiesResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListActivities godoc
// @Summary List activities
// @Description Returns a paginated list of activities, newest first. Use page and page_size query params.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListActivitiesSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities [get]
func (c *ActivityController) ListActivities(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListAll(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.ActivityWithHost{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListActivitiesResponse{Items: items, Pagination: meta})
}

// ListNearbySuccessResponse is the success response envelope for GET /activities/nearby (200).
type ListNearbySuccessResponse struct {
	Data  []*domain.ActivityWithHost `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListNearby godoc
// @Summary Discover activities near a point
// @Description Returns active activities within dist kilometers of (lat, lng), soonest first. dist defaults to 5 when omitted or invalid.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude of the query point"
// @Param lng query number true "Longitude of the query point"
// @Param dist query number false "Radius in kilometers (default 5)"
// @Success 200 {object} controllers.ListNearbySuccessResponse "data is an array of activities with host summaries"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/nearby [get]
func (c *ActivityController) ListNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "lat and lng query parameters are required")
		return
	}
	dist, _ := strconv.ParseFloat(q.Get("dist"), 64)

	items, err := c.Service.Nearby(r.Context(), lat, lng, dist)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "lat or lng out of range")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.ActivityWithHost{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// ListMineSuccessResponse is the success response envelope for GET /activities/mine (200).
type ListMineSuccessResponse struct {
	Data  []*domain.ActivityWithHost `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListMine godoc
// @Summary List the current user's activities
// @Description Returns activities the authenticated user hosts or was accepted into.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMineSuccessResponse "data is an array of activities"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/mine [get]
func (c *ActivityController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.ActivityWithHost{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// JoinActivitySuccessResponse is the success response envelope for POST /activities/{activityID}/join (202).
type JoinActivitySuccessResponse struct {
	Data  *domain.Participation `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// JoinActivity godoc
// @Summary Request to join an activity
// @Description Creates a pending join request for the authenticated user. The host decides later; 202 reflects that nothing is final yet. Hosts cannot join their own activity.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID"
// @Success 202 {object} controllers.JoinActivitySuccessResponse "data contains the pending participation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (host joining own activity)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate request or activity full)"
// @Failure 504 {object} helpers.APIResponse "error.code: timeout"
// @Router /activities/{activityID}/join [post]
func (c *ActivityController) JoinActivity(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if activityID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing activityID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	part, err := c.Service.Join(r.Context(), activityID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "hosts cannot join their own activity")
			return
		}
		if errors.Is(err, domain.ErrDuplicateRequest) || errors.Is(err, domain.ErrCapacityExceeded) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
			return
		}
		if errors.Is(err, domain.ErrTimeout) {
			helpers.WriteJSONError(w, http.StatusGatewayTimeout, helpers.ErrCodeTimeout, "request timed out")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, part)
}

// DecideRequestRequest is the request body for POST /activities/{activityID}/requests.
type DecideRequestRequest struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// Validate implements Validator.
func (d DecideRequestRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(d.UserID) == "" {
		errs = append(errs, "userId is required")
	}
	if d.Status != string(domain.ParticipationAccepted) && d.Status != string(domain.ParticipationRejected) {
		errs = append(errs, "status must be accepted or rejected")
	}
	return errs
}

// DecideRequestSuccessResponse is the success response envelope for POST /activities/{activityID}/requests (200).
type DecideRequestSuccessResponse struct {
	Data  *domain.Participation `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// DecideRequest godoc
// @Summary Accept or reject a join request
// @Description The host decides a pending join request. Acceptance re-checks capacity; decided requests are terminal and cannot be decided again.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID"
// @Param body body DecideRequestRequest true "User ID and decision (accepted or rejected)"
// @Success 200 {object} controllers.DecideRequestSuccessResponse "data contains the decided participation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (caller is not the host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (activity or request)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already decided or activity full)"
// @Failure 504 {object} helpers.APIResponse "error.code: timeout"
// @Router /activities/{activityID}/requests [post]
func (c *ActivityController) DecideRequest(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if activityID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing activityID")
		return
	}
	var req DecideRequestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	part, err := c.Service.Decide(r.Context(), activityID, hostID, req.UserID, domain.ParticipationStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity or join request not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the host can decide join requests")
			return
		}
		if errors.Is(err, domain.ErrAlreadyDecided) || errors.Is(err, domain.ErrCapacityExceeded) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
			return
		}
		if errors.Is(err, domain.ErrInvalidDecision) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrTimeout) {
			helpers.WriteJSONError(w, http.StatusGatewayTimeout, helpers.ErrCodeTimeout, "request timed out")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, part)
}

// ListPendingRequestsSuccessResponse is the success response envelope for GET /activities/{activityID}/requests (200).
type ListPendingRequestsSuccessResponse struct {
	Data  []*domain.PendingRequest `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ListPendingRequests godoc
// @Summary List pending join requests for an activity
// @Description Returns the pending join requests with requester summaries. Only the host can list.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param activityID path string true "Activity ID"
// @Success 200 {object} controllers.ListPendingRequestsSuccessResponse "data is an array of pending requests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /activities/{activityID}/requests [get]
func (c *ActivityController) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activityID")
	if activityID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing activityID")
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	requests, err := c.Service.PendingRequests(r.Context(), activityID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "activity not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the host can list join requests")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if requests == nil {
		requests = []*domain.PendingRequest{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}
