package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureForwarder struct {
	got chan events.Event
	err error
}

func (c *captureForwarder) Publish(ctx context.Context, event events.Event) error {
	c.got <- event
	return c.err
}

func keys(m map[string]events.Event) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func newBus(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestConsumerForwardsUsageEvents(t *testing.T) {
	tests := []struct {
		name       string
		forwardErr error
	}{
		{"forwarded", nil},
		{"forward failure is swallowed", errors.New("nats down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newBus(t)
			fwd := &captureForwarder{got: make(chan events.Event, 2), err: tt.forwardErr}
			log := logger.NewNopLogger()

			pub := NewPublisherService("usage", bus, log)
			pub.Publish(context.Background(), events.PlanGenerated(events.PlanUsage{Mode: "llm", Phases: 4}))
			pub.Publish(context.Background(), events.CommandsSuggested("groq", "llama", 3, false))

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- NewConsumerService(bus, "usage", fwd, log).Consume(ctx) }()

			// replay order of a persistent channel is not guaranteed
			byType := map[string]events.Event{}
			for i := 0; i < 2; i++ {
				event := receive(t, fwd.got)
				byType[event.EventType()] = event
			}
			assert.ElementsMatch(t, []string{events.TypePlanGenerated, events.TypeCommandsSuggested}, keys(byType))
			require.Contains(t, byType, events.TypePlanGenerated)
			assert.Equal(t, float64(4), byType[events.TypePlanGenerated].Payload()["phases"])

			cancel()
			require.NoError(t, <-done)
		})
	}
}

func TestConsumerAcksGarbage(t *testing.T) {
	bus := newBus(t)
	fwd := &captureForwarder{got: make(chan events.Event, 1)}

	require.NoError(t, bus.Publish("usage", message.NewMessage(watermill.NewUUID(), []byte("not an event"))))
	NewPublisherService("usage", bus, logger.NewNopLogger()).Publish(context.Background(), events.New("chat.completed", nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewConsumerService(bus, "usage", fwd, logger.NewNopLogger()).Consume(ctx) }()

	got := receive(t, fwd.got)
	assert.Equal(t, events.TypeChatCompleted, got.EventType())
}

func receive(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded event")
		return nil
	}
}
