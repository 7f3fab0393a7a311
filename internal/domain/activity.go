package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category classifies an activity.
type Category string

const (
	CategoryCoffee Category = "coffee"
	CategoryGame   Category = "game"
	CategoryStudy  Category = "study"
	CategoryWalk   Category = "walk"
	CategorySports Category = "sports"
	CategoryChat   Category = "chat"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryCoffee, CategoryGame, CategoryStudy, CategoryWalk, CategorySports, CategoryChat:
		return true
	}
	return false
}

// ActivityStatus is host-controlled. Capacity enforcement never transitions
// an activity to StatusFull automatically; the field is informational.
type ActivityStatus string

const (
	StatusActive    ActivityStatus = "active"
	StatusFull      ActivityStatus = "full"
	StatusCancelled ActivityStatus = "cancelled"
)

// ParticipationStatus is the admission state for one user on one activity.
// Accepted and rejected are terminal.
type ParticipationStatus string

const (
	ParticipationPending  ParticipationStatus = "pending"
	ParticipationAccepted ParticipationStatus = "accepted"
	ParticipationRejected ParticipationStatus = "rejected"
)

// DefaultCapacity is used when an activity is created without an explicit
// capacity.
const DefaultCapacity = 4

// MaxCapacity bounds the per-activity capacity accepted at creation.
const MaxCapacity = 64

// Location is a geographic point in GeoJSON axis order: longitude first,
// then latitude. The order is part of the wire contract and must survive
// round-trips bit-for-bit.
// swagger:model Location
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	AddressName string    `json:"addressName,omitempty"`
}

// Lng returns the longitude (first coordinate).
func (l Location) Lng() float64 { return l.Coordinates[0] }

// Lat returns the latitude (second coordinate).
func (l Location) Lat() float64 { return l.Coordinates[1] }

// Participation is one user's admission record on one activity. It is
// embedded in the Activity aggregate and never addressed independently.
// swagger:model Participation
type Participation struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Status      ParticipationStatus `json:"status"`
	RequestedAt time.Time           `json:"requestedAt"`
	DecidedAt   *time.Time          `json:"decidedAt,omitempty"`
}

// Activity is the aggregate root for a meetup: the host, the pinned location
// and time, and the embedded participant list. All participation mutations
// go through the methods below so the admission rules hold everywhere.
// swagger:model Activity
type Activity struct {
	ID           string          `json:"id"`
	HostID       string          `json:"hostId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     Category        `json:"category"`
	Location     Location        `json:"location"`
	Time         time.Time       `json:"time"`
	Capacity     int             `json:"capacity"`
	Status       ActivityStatus  `json:"status"`
	Participants []Participation `json:"participants"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewActivity returns an active Activity with the given fields. ID is set by
// the repository on create. Capacity falls back to DefaultCapacity when
// non-positive.
func NewActivity(hostID, title, description string, category Category, loc Location, at time.Time, capacity int, now time.Time) *Activity {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Activity{
		HostID:       hostID,
		Title:        title,
		Description:  description,
		Category:     category,
		Location:     loc,
		Time:         at,
		Capacity:     capacity,
		Status:       StatusActive,
		Participants: []Participation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AcceptedCount returns the number of accepted participants. Pending entries
// do not consume capacity.
func (a *Activity) AcceptedCount() int {
	n := 0
	for i := range a.Participants {
		if a.Participants[i].Status == ParticipationAccepted {
			n++
		}
	}
	return n
}

// ParticipationOf returns the participation record for userID, or nil.
func (a *Activity) ParticipationOf(userID string) *Participation {
	for i := range a.Participants {
		if a.Participants[i].UserID == userID {
			return &a.Participants[i]
		}
	}
	return nil
}

// RequestToJoin appends a pending participation for userID.
// Guards, in order: the host cannot request to join their own activity; a
// user holds at most one participation per activity (re-requesting after a
// decision is rejected, not reset); the accepted count must be below
// capacity at request time. The capacity guard runs again at acceptance.
func (a *Activity) RequestToJoin(userID string, now time.Time) (*Participation, error) {
	if userID == a.HostID {
		return nil, ErrForbidden
	}
	if a.ParticipationOf(userID) != nil {
		return nil, ErrDuplicateRequest
	}
	if a.AcceptedCount() >= a.Capacity {
		return nil, ErrCapacityExceeded
	}
	a.Participants = append(a.Participants, Participation{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      ParticipationPending,
		RequestedAt: now,
	})
	a.UpdatedAt = now
	return &a.Participants[len(a.Participants)-1], nil
}

// Decide moves userID's pending participation to accepted or rejected.
// Only the host may decide. Capacity is re-checked at the moment of
// acceptance: other acceptances may have happened since the request.
func (a *Activity) Decide(actorID, userID string, decision ParticipationStatus, now time.Time) (*Participation, error) {
	if actorID != a.HostID {
		return nil, ErrForbidden
	}
	if decision != ParticipationAccepted && decision != ParticipationRejected {
		return nil, ErrInvalidDecision
	}
	p := a.ParticipationOf(userID)
	if p == nil {
		return nil, ErrNotFound
	}
	if p.Status != ParticipationPending {
		return nil, ErrAlreadyDecided
	}
	if decision == ParticipationAccepted && a.AcceptedCount() >= a.Capacity {
		return nil, ErrCapacityExceeded
	}
	p.Status = decision
	decidedAt := now
	p.DecidedAt = &decidedAt
	a.UpdatedAt = now
	return p, nil
}

// PendingParticipations returns the pending records in request order.
func (a *Activity) PendingParticipations() []Participation {
	var pending []Participation
	for _, p := range a.Participants {
		if p.Status == ParticipationPending {
			pending = append(pending, p)
		}
	}
	return pending
}

// ActivityWithHost bundles an activity with its host's public summary.
// swagger:model ActivityWithHost
type ActivityWithHost struct {
	*Activity
	Host *UserSummary `json:"host"`
}

// JoinRequestNotification is one entry in a host's notification feed: a
// pending participation flattened with the activity it belongs to.
// swagger:model JoinRequestNotification
type JoinRequestNotification struct {
	RequestID     string       `json:"requestId"`
	ActivityID    string       `json:"activityId"`
	ActivityTitle string       `json:"activityTitle"`
	Requester     *UserSummary `json:"requester"`
	RequestedAt   time.Time    `json:"requestedAt"`
}

// PendingRequest is a pending participation with the requester attached,
// as shown in the host's per-activity triage view.
// swagger:model PendingRequest
type PendingRequest struct {
	Participation
	Requester *UserSummary `json:"requester"`
}

// ActivityRepository defines storage for the Activity aggregate. The
// repository is the sole writer of participation state; Mutate is the only
// mutation path after creation.
type ActivityRepository interface {
	Create(ctx context.Context, a *Activity) error
	GetByID(ctx context.Context, id string) (*Activity, error)
	ListActive(ctx context.Context) ([]*Activity, error)
	ListNewestFirst(ctx context.Context, p PaginationParams) ([]*Activity, int, error)
	ListForUser(ctx context.Context, userID string) ([]*Activity, error)
	ListByHostWithPending(ctx context.Context, hostID string) ([]*Activity, error)
	// Mutate loads the aggregate under a row lock, applies fn, and persists
	// the result in the same transaction. A non-nil error from fn aborts the
	// transaction and is returned unchanged.
	Mutate(ctx context.Context, id string, fn func(*Activity) error) (*Activity, error)
}

// GeoIndex is the in-process spatial index over active activity locations.
// Inserts must be visible to Within immediately.
type GeoIndex interface {
	Insert(id string, lng, lat float64)
	Remove(id string)
	// Within returns the ids of indexed points whose great-circle distance
	// from (lng, lat) is at most radiusMeters.
	Within(lng, lat, radiusMeters float64) []string
}

// ActivityService defines the activity and admission operations.
type ActivityService interface {
	Create(ctx context.Context, hostID string, in CreateActivityInput) (*ActivityWithHost, error)
	Nearby(ctx context.Context, lat, lng, distKm float64) ([]*ActivityWithHost, error)
	ListAll(ctx context.Context, p PaginationParams) ([]*ActivityWithHost, int, error)
	ListMine(ctx context.Context, userID string) ([]*ActivityWithHost, error)
	Join(ctx context.Context, activityID, userID string) (*Participation, error)
	Decide(ctx context.Context, activityID, hostID, userID string, decision ParticipationStatus) (*Participation, error)
	PendingRequests(ctx context.Context, activityID, callerID string) ([]*PendingRequest, error)
	IncomingRequests(ctx context.Context, hostID string) ([]*JoinRequestNotification, error)
}

// CreateActivityInput carries the validated fields for activity creation.
type CreateActivityInput struct {
	Title       string
	Description string
	Category    Category
	Location    Location
	Time        time.Time
	Capacity    int
}
