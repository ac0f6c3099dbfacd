package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Knowledge KnowledgeConfig
	Wizard    WizardConfig
	Ai        AIConfig
	Keys      APIKeys
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	ConversationAPIURL string
	ChatMaxDuration    time.Duration
}

// KnowledgeConfig drives the retrieval client and the chat context budget.
type KnowledgeConfig struct {
	BaseURL        string
	CollectionName string
	FetchResults   int // n_results sent upstream
	ContextResults int // post-filter cap
	CharBudget     int
	Timeout        time.Duration
	CacheTTL       time.Duration // 0 disables caching
	MaxRetries     int           // 0 disables the retry decorator
}

// WizardConfig overrides the knowledge limits for plan synthesis.
type WizardConfig struct {
	ContextResults int
	CharBudget     int
}

type AIConfig struct {
	LLMProvider       string // "openai", "groq", "ollama", "gemini"
	LLMModel          string
	OllamaBaseURL     string
	OpenAIBaseURL     string
	GroqBaseURL       string
	MaxRetries        int
	TokenizerEncoding string
}

type APIKeys struct {
	OpenAI string
	Groq   string
	Gemini string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	contextResults := getEnvAsInt("KB_CONTEXT_RESULTS", 5)
	charBudget := getEnvAsInt("KB_CONTEXT_CHAR_BUDGET", 4000)
	kbURL := getEnv("KNOWLEDGE_BASE_URL", "http://localhost:8000")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/beaglemind.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			ConversationAPIURL: getEnv("CONVERSATION_API_URL", kbURL),
			ChatMaxDuration:    getEnvAsSeconds("CHAT_MAX_DURATION_SECONDS", 30),
		},
		Knowledge: KnowledgeConfig{
			BaseURL:        kbURL,
			CollectionName: getEnv("KB_COLLECTION_NAME", "beaglemind_col"),
			FetchResults:   getEnvAsInt("KB_FETCH_RESULTS", 10),
			ContextResults: contextResults,
			CharBudget:     charBudget,
			Timeout:        getEnvAsSeconds("KB_TIMEOUT_SECONDS", 15),
			CacheTTL:       getEnvAsSeconds("KB_CACHE_TTL_SECONDS", 300),
			MaxRetries:     getEnvAsInt("KB_MAX_RETRIES", 0),
		},
		Wizard: WizardConfig{
			ContextResults: getEnvAsInt("WIZARD_CONTEXT_RESULTS", contextResults),
			CharBudget:     getEnvAsInt("WIZARD_CONTEXT_CHAR_BUDGET", charBudget),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			MaxRetries:        getEnvAsInt("LLM_MAX_RETRIES", 0),
			TokenizerEncoding: getEnv("TOKENIZER_ENCODING", "cl100k_base"),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Groq:   getEnv("GROQ_API_KEY", ""),
			Gemini: getEnv("GEMINI_API_KEY", ""),
		},
		Tracing: TracingConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
