package service

import (
	"context"

	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder is the downstream sink for usage events, normally the NATS publisher.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	// Consume blocks until ctx is done or the subscription closes.
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	log        logger.ILogger
}

// NewConsumerService drains the usage topic. With a nil forwarder events are only logged.
func NewConsumerService(subscriber message.Subscriber, topicName string, forwarder EventForwarder, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			cs.processMessage(ctx, msg)
		}
	}
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.log.Error("CONSUMER", "Failed to decode event", map[string]interface{}{"message_id": msg.UUID, "error": err.Error()})
		msg.Ack() // never redeliver garbage
		return
	}

	cs.log.Info("CONSUMER", "Usage event", map[string]interface{}{"type": event.Type, "data": event.Data})

	if cs.forwarder == nil {
		msg.Ack()
		return
	}

	if err := cs.forwarder.Publish(ctx, event); err != nil {
		// forwarding is best effort
		cs.log.Warn("CONSUMER", "Failed to forward event", map[string]interface{}{"type": event.Type, "error": err.Error()})
	}
	msg.Ack()
}
