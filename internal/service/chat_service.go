package service

import (
	"context"
	"iter"
	"strings"
	"time"

	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/events"
	"beaglemind-be/pkg/knowledge"
	"beaglemind-be/pkg/llm"
	"beaglemind-be/pkg/llm/factory"
	"beaglemind-be/pkg/rag/grounding"
	"beaglemind-be/pkg/rag/prompt"
	"beaglemind-be/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	chatTracerName = "beaglemind/service/chat"
	// number of trailing messages whose user turns feed the retrieval query
	retrievalWindow = 4
)

// Retrieval outcomes reported in the meta event.
const (
	RetrievalOK          = "ok"
	RetrievalEmpty       = "empty"
	RetrievalUnavailable = "unavailable"
	RetrievalSkipped     = "skipped"
)

var ErrEmptyHistory = fiber.NewError(fiber.StatusBadRequest, "messages contain no text")

// StreamDispatcher is the part of the completion dispatcher the chat flow needs.
type StreamDispatcher interface {
	Resolve(provider, model string) factory.Resolution
	Dispatch(ctx context.Context, systemPrompt string, history []llm.Message, provider, model string, opts ...llm.Option) (iter.Seq2[string, error], factory.Resolution)
}

type ChatSettings struct {
	ContextResults int
	CharBudget     int
}

// ChatTurn is one prepared chat request. Stream is nil until the turn is started.
type ChatTurn struct {
	Meta         dto.ChatMeta
	SystemPrompt string
	History      []llm.Message
	Context      grounding.BuiltContext
	Stream       iter.Seq2[string, error]

	provider  string
	model     string
	startedAt time.Time
}

type IChatService interface {
	// Prepare retrieves context and assembles the system prompt without calling a model.
	Prepare(ctx context.Context, req *dto.ChatRequest) (*ChatTurn, error)
	// Start prepares the turn and attaches the lazy completion stream.
	Start(ctx context.Context, req *dto.ChatRequest) (*ChatTurn, error)
	// Finish records the outcome once the stream has been consumed or abandoned.
	Finish(ctx context.Context, turn *ChatTurn, transport, output string, err error)
}

type chatService struct {
	retriever  knowledge.Retriever
	dispatcher StreamDispatcher
	counter    *token.Counter
	publisher  IPublisherService
	settings   ChatSettings
	log        logger.ILogger
}

func NewChatService(
	retriever knowledge.Retriever,
	dispatcher StreamDispatcher,
	counter *token.Counter,
	publisher IPublisherService,
	settings ChatSettings,
	log logger.ILogger,
) IChatService {
	return &chatService{
		retriever:  retriever,
		dispatcher: dispatcher,
		counter:    counter,
		publisher:  publisher,
		settings:   settings,
		log:        log,
	}
}

func (s *chatService) Prepare(ctx context.Context, req *dto.ChatRequest) (*ChatTurn, error) {
	ctx, span := otel.Tracer(chatTracerName).Start(ctx, "chat.prepare")
	defer span.End()

	history := req.History()
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	res := s.dispatcher.Resolve(req.Provider, req.Model)
	contextText, built, status := s.ground(ctx, RetrievalQuery(req.Messages))
	systemPrompt := prompt.Assemble(prompt.BasePolicy(), prompt.ParseMode(req.Data.Tool), contextText)
	tokens := s.counter.CountPrompt(systemPrompt, history)

	span.SetAttributes(
		attribute.String("llm.provider", res.Provider),
		attribute.String("llm.model", res.Model),
		attribute.String("retrieval.status", status),
		attribute.Int("retrieval.included", built.Included),
		attribute.Int("prompt.tokens", tokens),
	)

	return &ChatTurn{
		Meta: dto.ChatMeta{
			Provider:  res.Provider,
			Model:     res.Model,
			Fallback:  res.Fallback,
			Included:  built.Included,
			Retrieval: status,
			Tokens:    tokens,
		},
		SystemPrompt: systemPrompt,
		History:      history,
		Context:      built,
		provider:     req.Provider,
		model:        req.Model,
		startedAt:    time.Now(),
	}, nil
}

func (s *chatService) Start(ctx context.Context, req *dto.ChatRequest) (*ChatTurn, error) {
	turn, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	turn.Stream, _ = s.dispatcher.Dispatch(ctx, turn.SystemPrompt, turn.History, turn.provider, turn.model)

	s.log.Info("ChatService", "Chat dispatched", map[string]interface{}{
		"provider":      turn.Meta.Provider,
		"model":         turn.Meta.Model,
		"retrieval":     turn.Meta.Retrieval,
		"included":      turn.Meta.Included,
		"prompt_tokens": turn.Meta.Tokens,
	})
	return turn, nil
}

func (s *chatService) Finish(ctx context.Context, turn *ChatTurn, transport, output string, err error) {
	usage := events.ChatUsage{
		Transport:    transport,
		Provider:     turn.Meta.Provider,
		Model:        turn.Meta.Model,
		Fallback:     turn.Meta.Fallback,
		Retrieval:    turn.Meta.Retrieval,
		Included:     turn.Meta.Included,
		PromptTokens: turn.Meta.Tokens,
		OutputTokens: s.counter.Count(output),
		Duration:     time.Since(turn.startedAt),
		Failed:       err != nil,
	}

	details := map[string]interface{}{
		"transport":     transport,
		"provider":      usage.Provider,
		"output_tokens": usage.OutputTokens,
		"duration_ms":   usage.Duration.Milliseconds(),
	}
	if err != nil {
		details["error"] = err.Error()
		s.log.Warn("ChatService", "Chat stream ended with error", details)
	} else {
		s.log.Info("ChatService", "Chat completed", details)
	}

	s.publisher.Publish(ctx, events.ChatCompleted(usage))
}

// ground returns the context text to append to the system prompt. A failed retrieval
// yields the unavailability note; an empty one yields nothing.
func (s *chatService) ground(ctx context.Context, query string) (string, grounding.BuiltContext, string) {
	if query == "" {
		return "", grounding.BuiltContext{}, RetrievalSkipped
	}

	result, err := s.retriever.Retrieve(ctx, query, s.settings.ContextResults)
	if err != nil {
		s.log.Warn("ChatService", "Knowledge base retrieval failed", map[string]interface{}{"error": err.Error()})
		return prompt.RetrievalUnavailableNote, grounding.BuiltContext{}, RetrievalUnavailable
	}
	if len(result.Items) == 0 {
		return "", grounding.BuiltContext{}, RetrievalEmpty
	}

	built := grounding.Build(result.Items, result.TotalFound, s.settings.CharBudget)
	return built.Text, built, RetrievalOK
}

// RetrievalQuery builds the knowledge-base query for a conversation. It is empty unless
// the latest message is from the user; otherwise it joins the user turns among the
// last few messages, falling back to the latest user text.
func RetrievalQuery(messages []dto.ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	latest := messages[len(messages)-1]
	if latest.Role != llm.RoleUser {
		return ""
	}

	var turns []string
	for _, m := range messages[max(0, len(messages)-retrievalWindow):] {
		if m.Role != llm.RoleUser {
			continue
		}
		if text := m.Text(); text != "" {
			turns = append(turns, text)
		}
	}
	if len(turns) > 0 {
		return strings.Join(turns, " ")
	}
	return latest.Text()
}
