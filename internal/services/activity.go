package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"spontimeet/internal/domain"
)

// DefaultRadiusKm is the discovery radius when the client does not pass one.
const DefaultRadiusKm = 5

const emailTimeout = 10 * time.Second

type activityService struct {
	activities domain.ActivityRepository
	users      domain.UserRepository
	geo        domain.GeoIndex
	emails     domain.EmailService
	logger     *slog.Logger
}

// NewActivityService creates an ActivityService. emails may be nil, in which
// case admission emails are skipped.
func NewActivityService(
	activities domain.ActivityRepository,
	users domain.UserRepository,
	geo domain.GeoIndex,
	emails domain.EmailService,
	logger *slog.Logger,
) domain.ActivityService {
	return &activityService{
		activities: activities,
		users:      users,
		geo:        geo,
		emails:     emails,
		logger:     logger,
	}
}

func validLngLat(lng, lat float64) bool {
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func (s *activityService) Create(ctx context.Context, hostID string, in domain.CreateActivityInput) (*domain.ActivityWithHost, error) {
	if strings.TrimSpace(in.Title) == "" || in.Time.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidCategory(in.Category) {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Location.Coordinates) != 2 || !validLngLat(in.Location.Lng(), in.Location.Lat()) {
		return nil, domain.ErrInvalidInput
	}
	if in.Capacity < 0 || in.Capacity > domain.MaxCapacity {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	a := domain.NewActivity(hostID, in.Title, in.Description, in.Category, in.Location, in.Time, in.Capacity, now)
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, storeErr("create activity", err)
	}
	s.geo.Insert(a.ID, a.Location.Lng(), a.Location.Lat())

	return &domain.ActivityWithHost{Activity: a, Host: s.summaryOf(ctx, hostID)}, nil
}

func (s *activityService) Nearby(ctx context.Context, lat, lng, distKm float64) ([]*domain.ActivityWithHost, error) {
	if !validLngLat(lng, lat) {
		return nil, domain.ErrInvalidInput
	}
	if distKm <= 0 {
		distKm = DefaultRadiusKm
	}

	ids := s.geo.Within(lng, lat, distKm*1000)
	activities := make([]*domain.Activity, 0, len(ids))
	for _, id := range ids {
		a, err := s.activities.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index entry outlived the row; drop it.
				s.geo.Remove(id)
				continue
			}
			return nil, storeErr("get activity", err)
		}
		if a.Status != domain.StatusActive {
			continue
		}
		activities = append(activities, a)
	}

	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Time.Equal(activities[j].Time) {
			return activities[i].ID < activities[j].ID
		}
		return activities[i].Time.Before(activities[j].Time)
	})

	return s.attachHosts(ctx, activities)
}

func (s *activityService) ListAll(ctx context.Context, p domain.PaginationParams) ([]*domain.ActivityWithHost, int, error) {
	activities, total, err := s.activities.ListNewestFirst(ctx, p)
	if err != nil {
		return nil, 0, storeErr("list activities", err)
	}
	withHosts, err := s.attachHosts(ctx, activities)
	if err != nil {
		return nil, 0, err
	}
	return withHosts, total, nil
}

func (s *activityService) ListMine(ctx context.Context, userID string) ([]*domain.ActivityWithHost, error) {
	activities, err := s.activities.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list activities for user", err)
	}
	return s.attachHosts(ctx, activities)
}

func (s *activityService) Join(ctx context.Context, activityID, userID string) (*domain.Participation, error) {
	var part domain.Participation
	updated, err := s.activities.Mutate(ctx, activityID, func(a *domain.Activity) error {
		p, err := a.RequestToJoin(userID, time.Now().UTC())
		if err != nil {
			return err
		}
		part = *p
		return nil
	})
	if err != nil {
		return nil, storeErr("join activity", err)
	}

	s.notifyJoinRequest(updated, userID)
	return &part, nil
}

func (s *activityService) Decide(ctx context.Context, activityID, hostID, userID string, decision domain.ParticipationStatus) (*domain.Participation, error) {
	var part domain.Participation
	updated, err := s.activities.Mutate(ctx, activityID, func(a *domain.Activity) error {
		p, err := a.Decide(hostID, userID, decision, time.Now().UTC())
		if err != nil {
			return err
		}
		part = *p
		return nil
	})
	if err != nil {
		return nil, storeErr("decide join request", err)
	}

	s.notifyDecision(updated, userID, decision)
	return &part, nil
}

func (s *activityService) PendingRequests(ctx context.Context, activityID, callerID string) ([]*domain.PendingRequest, error) {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, storeErr("get activity", err)
	}
	if a.HostID != callerID {
		return nil, domain.ErrForbidden
	}

	pending := a.PendingParticipations()
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.UserID)
	}
	summaries, err := s.users.ListSummaries(ctx, ids)
	if err != nil {
		return nil, storeErr("list user summaries", err)
	}

	out := make([]*domain.PendingRequest, 0, len(pending))
	for _, p := range pending {
		out = append(out, &domain.PendingRequest{
			Participation: p,
			Requester:     summaryOrFallback(summaries, p.UserID),
		})
	}
	return out, nil
}

func (s *activityService) IncomingRequests(ctx context.Context, hostID string) ([]*domain.JoinRequestNotification, error) {
	activities, err := s.activities.ListByHostWithPending(ctx, hostID)
	if err != nil {
		return nil, storeErr("list activities with pending requests", err)
	}

	var ids []string
	for _, a := range activities {
		for _, p := range a.PendingParticipations() {
			ids = append(ids, p.UserID)
		}
	}
	summaries, err := s.users.ListSummaries(ctx, ids)
	if err != nil {
		return nil, storeErr("list user summaries", err)
	}

	notifications := make([]*domain.JoinRequestNotification, 0, len(ids))
	for _, a := range activities {
		for _, p := range a.PendingParticipations() {
			notifications = append(notifications, &domain.JoinRequestNotification{
				RequestID:     p.ID,
				ActivityID:    a.ID,
				ActivityTitle: a.Title,
				Requester:     summaryOrFallback(summaries, p.UserID),
				RequestedAt:   p.RequestedAt,
			})
		}
	}
	return notifications, nil
}

func (s *activityService) attachHosts(ctx context.Context, activities []*domain.Activity) ([]*domain.ActivityWithHost, error) {
	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.HostID)
	}
	summaries, err := s.users.ListSummaries(ctx, ids)
	if err != nil {
		return nil, storeErr("list host summaries", err)
	}
	out := make([]*domain.ActivityWithHost, 0, len(activities))
	for _, a := range activities {
		out = append(out, &domain.ActivityWithHost{
			Activity: a,
			Host:     summaryOrFallback(summaries, a.HostID),
		})
	}
	return out, nil
}

func (s *activityService) summaryOf(ctx context.Context, userID string) *domain.UserSummary {
	sum, err := s.users.GetSummary(ctx, userID)
	if err != nil {
		s.logger.Warn("could not load user summary", "user", userID, "err", err)
		return &domain.UserSummary{ID: userID}
	}
	return sum
}

func summaryOrFallback(summaries map[string]*domain.UserSummary, userID string) *domain.UserSummary {
	if sum, ok := summaries[userID]; ok {
		return sum
	}
	return &domain.UserSummary{ID: userID}
}

// notifyJoinRequest emails the host about a new pending request.
// Best-effort: runs in the background and never affects the join result.
func (s *activityService) notifyJoinRequest(a *domain.Activity, requesterID string) {
	if s.emails == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		host, err := s.users.GetContact(ctx, a.HostID)
		if err != nil {
			s.logger.Warn("join request email skipped", "activity", a.ID, "err", err)
			return
		}
		requester := s.summaryOf(ctx, requesterID)
		err = s.emails.SendJoinRequestNotice(ctx, &domain.JoinRequestEmailData{
			HostEmail:     host.Email,
			HostName:      host.Name,
			RequesterName: requester.Name,
			ActivityTitle: a.Title,
		})
		if err != nil {
			s.logger.Warn("join request email failed", "activity", a.ID, "err", err)
		}
	}()
}

// notifyDecision emails the requester about the host's decision.
func (s *activityService) notifyDecision(a *domain.Activity, userID string, decision domain.ParticipationStatus) {
	if s.emails == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		requester, err := s.users.GetContact(ctx, userID)
		if err != nil {
			s.logger.Warn("decision email skipped", "activity", a.ID, "err", err)
			return
		}
		err = s.emails.SendDecisionNotice(ctx, &domain.DecisionEmailData{
			RequesterEmail: requester.Email,
			RequesterName:  requester.Name,
			ActivityTitle:  a.Title,
			Accepted:       decision == domain.ParticipationAccepted,
		})
		if err != nil {
			s.logger.Warn("decision email failed", "activity", a.ID, "err", err)
		}
	}()
}
