package relay

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spontimeet/internal/domain"
)

type recordingSubscriber struct {
	mu       sync.Mutex
	received []*domain.MessageWithSender
	failWith error
}

func (s *recordingSubscriber) Deliver(msg *domain.MessageWithSender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.received = append(s.received, msg)
	return nil
}

func (s *recordingSubscriber) messages() []*domain.MessageWithSender {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.MessageWithSender, len(s.received))
	copy(out, s.received)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func wrap(id string) *domain.MessageWithSender {
	return &domain.MessageWithSender{Message: &domain.Message{ID: id}}
}

func TestRegistry_PublishDeliversToRoomMembersOnly(t *testing.T) {
	reg := NewRegistry(testLogger())
	inX := &recordingSubscriber{}
	inY := &recordingSubscriber{}
	reg.Subscribe("room-x", inX)
	reg.Subscribe("room-y", inY)

	delivered := reg.Publish("room-x", wrap("m1"))
	require.Equal(t, 1, delivered)
	require.Len(t, inX.messages(), 1)
	require.Empty(t, inY.messages())
}

func TestRegistry_SubscribeIdempotent(t *testing.T) {
	reg := NewRegistry(testLogger())
	sub := &recordingSubscriber{}
	reg.Subscribe("r", sub)
	reg.Subscribe("r", sub)
	require.Equal(t, 1, reg.RoomSize("r"))
	require.Equal(t, 1, reg.Publish("r", wrap("m1")))
	require.Len(t, sub.messages(), 1)
}

func TestRegistry_UnsubscribeIdempotent(t *testing.T) {
	reg := NewRegistry(testLogger())
	sub := &recordingSubscriber{}
	reg.Unsubscribe("nope", sub) // absent room
	reg.Subscribe("r", sub)
	reg.Unsubscribe("r", sub)
	reg.Unsubscribe("r", sub) // absent subscriber
	require.Equal(t, 0, reg.RoomSize("r"))
	require.Equal(t, 0, reg.Publish("r", wrap("m1")))
}

func TestRegistry_FailedDeliveryDetachesSubscriber(t *testing.T) {
	reg := NewRegistry(testLogger())
	healthy := &recordingSubscriber{}
	broken := &recordingSubscriber{failWith: errors.New("write: broken pipe")}
	reg.Subscribe("r", healthy)
	reg.Subscribe("r", broken)

	delivered := reg.Publish("r", wrap("m1"))
	require.Equal(t, 1, delivered)
	require.Equal(t, 1, reg.RoomSize("r"))

	// The broken subscriber no longer receives anything.
	require.Equal(t, 1, reg.Publish("r", wrap("m2")))
	require.Len(t, healthy.messages(), 2)
}

func TestRegistry_PublishToEmptyRoom(t *testing.T) {
	reg := NewRegistry(testLogger())
	require.Equal(t, 0, reg.Publish("ghost", wrap("m1")))
}

func TestRegistry_OrderPreservedPerSubscriber(t *testing.T) {
	reg := NewRegistry(testLogger())
	sub := &recordingSubscriber{}
	reg.Subscribe("r", sub)
	for _, id := range []string{"m1", "m2", "m3"} {
		reg.Publish("r", wrap(id))
	}
	got := sub.messages()
	require.Len(t, got, 3)
	require.Equal(t, "m1", got[0].ID)
	require.Equal(t, "m2", got[1].ID)
	require.Equal(t, "m3", got[2].ID)
}

// stalledSubscriber parks inside Deliver until released, the way a write
// to a peer that stopped reading parks until its deadline fires.
type stalledSubscriber struct {
	release chan struct{}
}

func (s *stalledSubscriber) Deliver(*domain.MessageWithSender) error {
	<-s.release
	return nil
}

func TestRegistry_StalledDeliveryDoesNotBlockOtherRooms(t *testing.T) {
	reg := NewRegistry(testLogger())
	stuck := &stalledSubscriber{release: make(chan struct{})}
	reg.Subscribe("room-a", stuck)

	published := make(chan struct{})
	go func() {
		reg.Publish("room-a", wrap("m1"))
		close(published)
	}()
	// Let the publish park inside the stalled delivery.
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		other := &recordingSubscriber{}
		reg.Subscribe("room-b", other)
		reg.Publish("room-b", wrap("m2"))
		reg.Unsubscribe("room-b", other)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("room-b operations blocked behind room-a's stalled delivery")
	}

	close(stuck.release)
	<-published
}

func TestRegistry_ResubscribeAfterRoomEmpties(t *testing.T) {
	reg := NewRegistry(testLogger())
	a := &recordingSubscriber{}
	reg.Subscribe("r", a)
	reg.Unsubscribe("r", a)
	require.Equal(t, 0, reg.RoomSize("r"))

	b := &recordingSubscriber{}
	reg.Subscribe("r", b)
	require.Equal(t, 1, reg.RoomSize("r"))
	require.Equal(t, 1, reg.Publish("r", wrap("m1")))
	require.Len(t, b.messages(), 1)
}

func TestRegistry_ConcurrentUnsubscribeResubscribe(t *testing.T) {
	reg := NewRegistry(testLogger())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &recordingSubscriber{}
			for j := 0; j < 50; j++ {
				reg.Subscribe("r", sub)
				reg.Unsubscribe("r", sub)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 0, reg.RoomSize("r"))

	// The room is usable after the churn tore it down repeatedly.
	sub := &recordingSubscriber{}
	reg.Subscribe("r", sub)
	require.Equal(t, 1, reg.Publish("r", wrap("m1")))
}

func TestRegistry_ConcurrentSubscribePublish(t *testing.T) {
	reg := NewRegistry(testLogger())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		sub := &recordingSubscriber{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Subscribe("r", sub)
			reg.Publish("r", wrap("m"))
			reg.Unsubscribe("r", sub)
		}()
	}
	wg.Wait()
	require.Equal(t, 0, reg.RoomSize("r"))
}
