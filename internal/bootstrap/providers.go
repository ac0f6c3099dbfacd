package bootstrap

import (
	"context"
	"time"

	"beaglemind-be/internal/config"
	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/knowledge"
	"beaglemind-be/pkg/llm"
	"beaglemind-be/pkg/llm/factory"
	"beaglemind-be/pkg/llm/llmretry"
	"beaglemind-be/pkg/token"
	"beaglemind-be/pkg/wizard"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns nil when no URL is configured. An unreachable server is logged and
// the client kept; the cache treats Redis errors as misses.
func NewRedis(redisURL string, log logger.ILogger) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}

// NewRetriever builds the knowledge-base client with its optional retry and cache layers.
// The cache wraps the retry so a hit never waits on backoff.
func NewRetriever(cfg config.KnowledgeConfig, rdb *redis.Client, log logger.ILogger) knowledge.Retriever {
	var retriever knowledge.Retriever = knowledge.NewClient(knowledge.ClientConfig{
		BaseURL:        cfg.BaseURL,
		CollectionName: cfg.CollectionName,
		FetchResults:   cfg.FetchResults,
		Timeout:        cfg.Timeout,
	}, log)

	retriever = knowledge.WithRetry(retriever, cfg.MaxRetries)
	if cfg.CacheTTL > 0 {
		retriever = knowledge.NewCachedRetriever(retriever, cfg.CollectionName, cfg.CacheTTL, rdb, log)
	}
	return retriever
}

func NewRegistry(cfg *config.Config) (*factory.Registry, error) {
	registry, err := factory.NewRegistry(factory.Settings{
		DefaultProvider: cfg.Ai.LLMProvider,
		DefaultModel:    cfg.Ai.LLMModel,
		OpenAIKey:       cfg.Keys.OpenAI,
		OpenAIBaseURL:   cfg.Ai.OpenAIBaseURL,
		GroqKey:         cfg.Keys.Groq,
		GroqBaseURL:     cfg.Ai.GroqBaseURL,
		GeminiKey:       cfg.Keys.Gemini,
		OllamaBaseURL:   cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Ai.MaxRetries > 0 {
		registry.Wrap(func(p llm.LLMProvider) llm.LLMProvider {
			return llmretry.New(p, cfg.Ai.MaxRetries)
		})
	}
	return registry, nil
}

// NewTokenCounter falls back to the rune estimator when the BPE tables cannot be loaded.
func NewTokenCounter(encoding string, log logger.ILogger) *token.Counter {
	counter, err := token.New(encoding)
	if err != nil {
		log.Warn("BOOTSTRAP", "Tokenizer unavailable, estimating token counts", map[string]interface{}{"error": err.Error()})
		return token.NewEstimator()
	}
	return counter
}

func NewSynthesizer(cfg *config.Config, retriever knowledge.Retriever, completer wizard.Completer, log logger.ILogger) *wizard.Synthesizer {
	return wizard.NewSynthesizer(retriever, completer, wizard.Options{
		ContextResults: cfg.Wizard.ContextResults,
		CharBudget:     cfg.Wizard.CharBudget,
	}, log)
}
