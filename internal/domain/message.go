package domain

import (
	"context"
	"time"
)

// MessageType discriminates message payloads. Only text is produced today;
// image and location are reserved wire values.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageLocation MessageType = "location"
)

// Message is one chat message in an activity's room. Immutable once created;
// ordering is by CreatedAt with persisted append order breaking ties.
// swagger:model Message
type Message struct {
	ID         string      `json:"id"`
	ActivityID string      `json:"activityId"`
	SenderID   string      `json:"senderId"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	CreatedAt  time.Time   `json:"createdAt"`

	// Seq is the append order assigned by the store. Internal tie-breaker,
	// not part of the wire format.
	Seq int64 `json:"-"`
}

// NewMessage returns a text Message. ID and Seq are set by the repository
// on create.
func NewMessage(activityID, senderID, content string, now time.Time) *Message {
	return &Message{
		ActivityID: activityID,
		SenderID:   senderID,
		Content:    content,
		Type:       MessageText,
		CreatedAt:  now,
	}
}

// MessageWithSender bundles a message with its sender's public summary.
// swagger:model MessageWithSender
type MessageWithSender struct {
	*Message
	Sender *UserSummary `json:"sender"`
}

// MessageRepository defines the durable, time-ordered message log. Append
// order defines the total order for a room.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByActivityID(ctx context.Context, activityID string) ([]*Message, error)
}

// RoomSubscriber is a connected client's delivery handle. Deliver must be
// safe for concurrent use; a failed delivery detaches the subscriber.
type RoomSubscriber interface {
	Deliver(msg *MessageWithSender) error
}

// RoomRelay is the realtime fan-out registry: room id (= activity id) to the
// set of currently connected subscribers. Subscribe and Unsubscribe are
// idempotent. Publish returns the number of subscribers delivered to;
// delivery is best-effort and at-most-once per subscriber per publish.
type RoomRelay interface {
	Subscribe(roomID string, sub RoomSubscriber)
	Unsubscribe(roomID string, sub RoomSubscriber)
	Publish(roomID string, msg *MessageWithSender) int
}

// ChatService persists and fans out room messages. Send stores the message
// before any fan-out is attempted, so history never misses a message a
// subscriber failed to receive live.
type ChatService interface {
	Send(ctx context.Context, activityID, senderID, content string) (*MessageWithSender, int, error)
	History(ctx context.Context, activityID string) ([]*MessageWithSender, error)
}
