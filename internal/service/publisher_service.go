package service

import (
	"context"

	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService puts usage events on the in-process bus. Publishing never fails a request.
type IPublisherService interface {
	Publish(ctx context.Context, event events.Event)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	log       logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		log:       log,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) {
	payload, err := events.Encode(event)
	if err != nil {
		ps.log.Error("PUBLISHER", "Failed to encode event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		ps.log.Error("PUBLISHER", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}

type nopPublisher struct{}

// NewNopPublisherService drops every event. Used by tests and the CLI.
func NewNopPublisherService() IPublisherService { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, events.Event) {}
