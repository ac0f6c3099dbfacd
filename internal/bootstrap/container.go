package bootstrap

import (
	"beaglemind-be/internal/config"
	"beaglemind-be/internal/controller"
	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/internal/service"
	"beaglemind-be/internal/websocket"
	"beaglemind-be/pkg/conversation"
	"beaglemind-be/pkg/llm/factory"

	pktNats "beaglemind-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// UsageTopic is the in-process topic carrying usage events.
const UsageTopic = "usage"

type Container struct {
	// Controllers
	ChatController         controller.IChatController
	WizardController       controller.IWizardController
	ConversationController controller.IConversationController
	HealthController       controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	closers []func()
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{}

	// 1. Infrastructure
	rdb := NewRedis(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, usage events stay local", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var forwarder service.EventForwarder
	if natsPub != nil {
		forwarder = natsPub
	}
	publisherService := service.NewPublisherService(UsageTopic, pubSub, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, UsageTopic, forwarder, sysLogger)

	// 3. Retrieval and completion
	retriever := NewRetriever(cfg.Knowledge, rdb, sysLogger)

	registry, err := NewRegistry(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	dispatcher := factory.NewDispatcher(registry, sysLogger)
	sysLogger.Info("BOOTSTRAP", "LLM providers ready", map[string]interface{}{
		"providers": registry.Names(),
		"default":   registry.Resolve("", ""),
	})

	counter := NewTokenCounter(cfg.Ai.TokenizerEncoding, sysLogger)

	// 4. Services
	chatService := service.NewChatService(retriever, dispatcher, counter, publisherService, service.ChatSettings{
		ContextResults: cfg.Knowledge.ContextResults,
		CharBudget:     cfg.Knowledge.CharBudget,
	}, sysLogger)
	wizardService := service.NewWizardService(NewSynthesizer(cfg, retriever, dispatcher, sysLogger), publisherService, sysLogger)
	conversationService := service.NewConversationService(
		conversation.NewClient(cfg.App.ConversationAPIURL, cfg.Knowledge.Timeout, sysLogger),
	)

	// 5. WebSocket Hub
	c.WebSocketHub = websocket.NewHub(sysLogger)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService, c.WebSocketHub, cfg.App.ChatMaxDuration, cfg.App.JwtSecret, sysLogger)
	c.WizardController = controller.NewWizardController(wizardService)
	c.ConversationController = controller.NewConversationController(conversationService, cfg.App.JwtSecret)
	c.HealthController = controller.NewHealthController(registry, c.WebSocketHub)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
