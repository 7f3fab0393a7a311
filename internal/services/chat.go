package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spontimeet/internal/domain"
)

type chatService struct {
	messages   domain.MessageRepository
	activities domain.ActivityRepository
	users      domain.UserRepository
	relay      domain.RoomRelay
	logger     *slog.Logger

	mu        sync.Mutex
	roomSends map[string]*sync.Mutex
}

// NewChatService creates a ChatService backed by the message log and the
// room relay.
func NewChatService(
	messages domain.MessageRepository,
	activities domain.ActivityRepository,
	users domain.UserRepository,
	relay domain.RoomRelay,
	logger *slog.Logger,
) domain.ChatService {
	return &chatService{
		messages:   messages,
		activities: activities,
		users:      users,
		relay:      relay,
		logger:     logger,
		roomSends:  make(map[string]*sync.Mutex),
	}
}

// roomLock returns the mutex serializing persist-and-publish for one room.
// Entries live for the life of the process.
func (s *chatService) roomLock(activityID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.roomSends[activityID]
	if !ok {
		l = &sync.Mutex{}
		s.roomSends[activityID] = l
	}
	return l
}

// Send persists the message, then fans it out to the room's current
// subscribers. The write happens first: a subscriber that missed the live
// delivery recovers the message from History, which is the only durability
// guarantee the relay offers. Persist and fan-out run under a per-room
// lock so subscribers see messages in the order the store committed them.
func (s *chatService) Send(ctx context.Context, activityID, senderID, content string) (*domain.MessageWithSender, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, domain.ErrInvalidInput
	}

	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		return nil, 0, storeErr("get activity", err)
	}

	sender, err := s.users.GetSummary(ctx, senderID)
	if err != nil {
		s.logger.Warn("could not load sender summary", "user", senderID, "err", err)
		sender = &domain.UserSummary{ID: senderID}
	}

	lock := s.roomLock(activityID)
	lock.Lock()
	defer lock.Unlock()

	m := domain.NewMessage(activityID, senderID, content, time.Now().UTC())
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, 0, storeErr("persist message", err)
	}

	out := &domain.MessageWithSender{Message: m, Sender: sender}
	delivered := s.relay.Publish(activityID, out)
	return out, delivered, nil
}

// History returns the full ordered message log for the activity's room.
func (s *chatService) History(ctx context.Context, activityID string) ([]*domain.MessageWithSender, error) {
	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		return nil, storeErr("get activity", err)
	}

	msgs, err := s.messages.ListByActivityID(ctx, activityID)
	if err != nil {
		return nil, storeErr("list messages", err)
	}

	ids := make([]string, 0, len(msgs))
	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			ids = append(ids, m.SenderID)
		}
	}
	summaries, err := s.users.ListSummaries(ctx, ids)
	if err != nil {
		return nil, storeErr("list sender summaries", err)
	}

	out := make([]*domain.MessageWithSender, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &domain.MessageWithSender{
			Message: m,
			Sender:  summaryOrFallback(summaries, m.SenderID),
		})
	}
	return out, nil
}
