package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spontimeet/internal/delivery/http/helpers"
	"spontimeet/internal/delivery/http/middleware"
	"spontimeet/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeActivityService implements domain.ActivityService for handler tests.
type fakeActivityService struct {
	createErr    error
	createResult *domain.ActivityWithHost
	lastCreateID string
	lastCreateIn domain.CreateActivityInput

	nearbyErr    error
	nearbyResult []*domain.ActivityWithHost
	lastLat      float64
	lastLng      float64
	lastDist     float64

	listAllErr    error
	listAllResult []*domain.ActivityWithHost
	listAllTotal  int
	lastParams    domain.PaginationParams

	listMineErr    error
	listMineResult []*domain.ActivityWithHost

	joinErr            error
	joinResult         *domain.Participation
	lastJoinActivityID string
	lastJoinUserID     string

	decideErr            error
	decideResult         *domain.Participation
	lastDecideActivityID string
	lastDecideHostID     string
	lastDecideUserID     string
	lastDecideStatus     domain.ParticipationStatus

	pendingErr    error
	pendingResult []*domain.PendingRequest

	incomingErr    error
	incomingResult []*domain.JoinRequestNotification
}

func (f *fakeActivityService) Create(ctx context.Context, hostID string, in domain.CreateActivityInput) (*domain.ActivityWithHost, error) {
	f.lastCreateID = hostID
	f.lastCreateIn = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeActivityService) Nearby(ctx context.Context, lat, lng, distKm float64) ([]*domain.ActivityWithHost, error) {
	f.lastLat = lat
	f.lastLng = lng
	f.lastDist = distKm
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	return f.nearbyResult, nil
}

func (f *fakeActivityService) ListAll(ctx context.Context, p domain.PaginationParams) ([]*domain.ActivityWithHost, int, error) {
	f.lastParams = p
	if f.listAllErr != nil {
		return nil, 0, f.listAllErr
	}
	return f.listAllResult, f.listAllTotal, nil
}

func (f *fakeActivityService) ListMine(ctx context.Context, userID string) ([]*domain.ActivityWithHost, error) {
	if f.listMineErr != nil {
		return nil, f.listMineErr
	}
	return f.listMineResult, nil
}

func (f *fakeActivityService) Join(ctx context.Context, activityID, userID string) (*domain.Participation, error) {
	f.lastJoinActivityID = activityID
	f.lastJoinUserID = userID
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return f.joinResult, nil
}

func (f *fakeActivityService) Decide(ctx context.Context, activityID, hostID, userID string, decision domain.ParticipationStatus) (*domain.Participation, error) {
	f.lastDecideActivityID = activityID
	f.lastDecideHostID = hostID
	f.lastDecideUserID = userID
	f.lastDecideStatus = decision
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	return f.decideResult, nil
}

func (f *fakeActivityService) PendingRequests(ctx context.Context, activityID, callerID string) ([]*domain.PendingRequest, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return f.pendingResult, nil
}

func (f *fakeActivityService) IncomingRequests(ctx context.Context, hostID string) ([]*domain.JoinRequestNotification, error) {
	if f.incomingErr != nil {
		return nil, f.incomingErr
	}
	return f.incomingResult, nil
}

func TestActivityController_CreateActivity(t *testing.T) {
	validBody := `{"title":"Coffee","description":"","category":"coffee","location":{"type":"Point","coordinates":[29.02,40.99],"addressName":"Moda"},"time":"2026-10-01T15:00:00Z","capacity":0}`

	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		noUserContext  bool
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "no user in context",
			body:           validBody,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
			noUserContext:  true,
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
			noUserContext:  true, // decode fails before we check context
		},
		{
			name:           "missing title",
			body:           `{"category":"coffee","location":{"type":"Point","coordinates":[29.02,40.99]},"time":"2026-10-01T15:00:00Z"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "title is required",
		},
		{
			name:           "bad category",
			body:           `{"title":"X","category":"skydiving","location":{"type":"Point","coordinates":[29.02,40.99]},"time":"2026-10-01T15:00:00Z"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "category",
		},
		{
			name:           "bad coordinates shape",
			body:           `{"title":"X","category":"coffee","location":{"type":"Point","coordinates":[29.02]},"time":"2026-10-01T15:00:00Z"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "coordinates",
		},
		{
			name:           "service rejects input",
			body:           validBody,
			fakeErr:        domain.ErrInvalidInput,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "service error",
			body:           validBody,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeActivityService{
				createErr: tt.fakeErr,
				createResult: &domain.ActivityWithHost{
					Activity: &domain.Activity{ID: "act-1", HostID: "user-123", Title: "Coffee"},
					Host:     &domain.UserSummary{ID: "user-123", Name: "Ayşe"},
				},
			}
			ctrl := NewActivityController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/activities", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.CreateActivity(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "user-123", fake.lastCreateID)
				assert.Equal(t, []float64{29.02, 40.99}, fake.lastCreateIn.Location.Coordinates)
			}
			if tt.wantStatus != http.StatusCreated && tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestActivityController_ListNearby(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		fakeErr    error
		wantStatus int
		wantDist   float64
	}{
		{
			name:       "success with explicit dist",
			query:      "?lat=40.99&lng=29.02&dist=2",
			wantStatus: http.StatusOK,
			wantDist:   2,
		},
		{
			name:       "dist omitted passes zero through",
			query:      "?lat=40.99&lng=29.02",
			wantStatus: http.StatusOK,
			wantDist:   0,
		},
		{
			name:       "missing lat",
			query:      "?lng=29.02",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non-numeric lng",
			query:      "?lat=40.99&lng=abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "out of range point",
			query:      "?lat=95&lng=29.02",
			fakeErr:    domain.ErrInvalidInput,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "service error",
			query:      "?lat=40.99&lng=29.02",
			fakeErr:    errors.New("db error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeActivityService{nearbyErr: tt.fakeErr}
			ctrl := NewActivityController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/activities/nearby"+tt.query, nil)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.ListNearby(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, 40.99, fake.lastLat)
				assert.Equal(t, 29.02, fake.lastLng)
				assert.Equal(t, tt.wantDist, fake.lastDist)
			}
		})
	}

	t.Run("nil result encodes as empty array", func(t *testing.T) {
		ctrl := NewActivityController(testLogger, &fakeActivityService{})
		req := httptest.NewRequest(http.MethodGet, "/activities/nearby?lat=40.99&lng=29.02", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.ListNearby(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})
}

func TestActivityController_ListActivities(t *testing.T) {
	fake := &fakeActivityService{
		listAllResult: []*domain.ActivityWithHost{
			{Activity: &domain.Activity{ID: "act-1", Title: "Coffee"}, Host: &domain.UserSummary{ID: "u1"}},
		},
		listAllTotal: 41,
	}
	ctrl := NewActivityController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/activities?page=2&page_size=10", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	ctrl.ListActivities(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 10}, fake.lastParams)

	var envelope struct {
		Data ListActivitiesResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, 41, envelope.Data.Pagination.Total)
	assert.Equal(t, 5, envelope.Data.Pagination.TotalPages)
}

func TestActivityController_JoinActivity(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "pending request accepted for processing",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "activity not found",
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "host joining own activity",
			fakeErr:    domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:       "duplicate request",
			fakeErr:    domain.ErrDuplicateRequest,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "activity full",
			fakeErr:    domain.ErrCapacityExceeded,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "store timeout",
			fakeErr:    domain.ErrTimeout,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   helpers.ErrCodeTimeout,
		},
		{
			name:       "service error",
			fakeErr:    errors.New("db error"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeActivityService{
				joinErr: tt.fakeErr,
				joinResult: &domain.Participation{
					ID:          "part-1",
					UserID:      "user-123",
					Status:      domain.ParticipationPending,
					RequestedAt: time.Now(),
				},
			}
			ctrl := NewActivityController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/activities/act-1/join", nil)
			req.SetPathValue("activityID", "act-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.JoinActivity(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusAccepted {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "act-1", fake.lastJoinActivityID)
				assert.Equal(t, "user-123", fake.lastJoinUserID)
			} else {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestActivityController_DecideRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "accept succeeds",
			body:       `{"userId":"user-9","status":"accepted"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "reject succeeds",
			body:       `{"userId":"user-9","status":"rejected"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid status value",
			body:       `{"userId":"user-9","status":"maybe"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "missing userId",
			body:       `{"status":"accepted"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "caller is not the host",
			body:       `{"userId":"user-9","status":"accepted"}`,
			fakeErr:    domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:       "no pending request for user",
			body:       `{"userId":"user-9","status":"accepted"}`,
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "already decided",
			body:       `{"userId":"user-9","status":"accepted"}`,
			fakeErr:    domain.ErrAlreadyDecided,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "capacity exhausted at acceptance",
			body:       `{"userId":"user-9","status":"accepted"}`,
			fakeErr:    domain.ErrCapacityExceeded,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeActivityService{
				decideErr: tt.fakeErr,
				decideResult: &domain.Participation{
					ID:     "part-1",
					UserID: "user-9",
					Status: domain.ParticipationAccepted,
				},
			}
			ctrl := NewActivityController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/activities/act-1/requests", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("activityID", "act-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "host-1"))
			rr := httptest.NewRecorder()

			ctrl.DecideRequest(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "act-1", fake.lastDecideActivityID)
				assert.Equal(t, "host-1", fake.lastDecideHostID)
				assert.Equal(t, "user-9", fake.lastDecideUserID)
			} else if tt.wantCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestActivityController_ListPendingRequests(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not host", fakeErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "activity missing", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeActivityService{
				pendingErr: tt.fakeErr,
				pendingResult: []*domain.PendingRequest{
					{Participation: domain.Participation{ID: "part-1", UserID: "user-9", Status: domain.ParticipationPending}, Requester: &domain.UserSummary{ID: "user-9", Name: "Mehmet"}},
				},
			}
			ctrl := NewActivityController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/activities/act-1/requests", nil)
			req.SetPathValue("activityID", "act-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "host-1"))
			rr := httptest.NewRecorder()

			ctrl.ListPendingRequests(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
		})
	}
}
