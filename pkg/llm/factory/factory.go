package factory

import (
	"beaglemind-be/pkg/llm"
	"beaglemind-be/pkg/llm/gemini"
	"beaglemind-be/pkg/llm/ollama"
	"beaglemind-be/pkg/llm/openai"
	"fmt"
	"sort"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// DefaultModels is the model used when a request names a provider but no model.
var DefaultModels = map[string]string{
	ProviderOpenAI: "gpt-4o",
	ProviderGroq:   "llama-3.3-70b-versatile",
	ProviderOllama: "llama3",
	ProviderGemini: "gemini-2.0-flash",
}

// Settings carries the provider credentials and endpoints.
type Settings struct {
	DefaultProvider string
	DefaultModel    string

	OpenAIKey     string
	OpenAIBaseURL string
	GroqKey       string
	GroqBaseURL   string
	GeminiKey     string
	OllamaBaseURL string
}

func NewLLMProvider(providerType, modelName string, s Settings) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOpenAI:
		return openai.NewProvider(ProviderOpenAI, s.OpenAIKey, s.OpenAIBaseURL, modelName), nil
	case ProviderGroq:
		baseURL := s.GroqBaseURL
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		return openai.NewProvider(ProviderGroq, s.GroqKey, baseURL, modelName), nil
	case ProviderOllama:
		return ollama.NewOllamaProvider(s.OllamaBaseURL, modelName), nil
	case ProviderGemini:
		return gemini.NewProvider(s.GeminiKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// Resolution is the provider and model a request actually runs against.
type Resolution struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Fallback bool   `json:"fallback"` // requested provider was unknown or unavailable
}

// Registry holds one provider per configured backend.
type Registry struct {
	providers       map[string]llm.LLMProvider
	defaultProvider string
	defaultModel    string
}

// NewRegistry builds every provider that can be constructed from s. Gemini is only
// registered when its key is present. The default provider must be constructible.
func NewRegistry(s Settings) (*Registry, error) {
	defaultProvider := strings.ToLower(strings.TrimSpace(s.DefaultProvider))
	if _, ok := DefaultModels[defaultProvider]; !ok {
		defaultProvider = ProviderOpenAI
	}

	r := &Registry{
		providers:       make(map[string]llm.LLMProvider),
		defaultProvider: defaultProvider,
		defaultModel:    s.DefaultModel,
	}
	if r.defaultModel == "" || defaultProvider != strings.ToLower(strings.TrimSpace(s.DefaultProvider)) {
		r.defaultModel = DefaultModels[defaultProvider]
	}

	for name := range DefaultModels {
		if name == ProviderGemini && s.GeminiKey == "" {
			continue
		}
		p, err := NewLLMProvider(name, DefaultModels[name], s)
		if err != nil {
			return nil, fmt.Errorf("build provider %s: %w", name, err)
		}
		r.providers[name] = p
	}

	if _, ok := r.providers[r.defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %s is not configured", r.defaultProvider)
	}

	return r, nil
}

// NewStaticRegistry wraps pre-built providers, keyed by Name().
func NewStaticRegistry(defaultProvider, defaultModel string, providers ...llm.LLMProvider) *Registry {
	r := &Registry{
		providers:       make(map[string]llm.LLMProvider, len(providers)),
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Wrap decorates every registered provider.
func (r *Registry) Wrap(decorate func(llm.LLMProvider) llm.LLMProvider) {
	for name, p := range r.providers {
		r.providers[name] = decorate(p)
	}
}

// Resolve picks the provider and model for a request. An empty provider hint means the
// default provider and keeps the requested model. An unknown provider falls back to the
// default provider and its default model, since the model name belongs to another backend.
// An empty model falls back to the resolved provider's default.
func (r *Registry) Resolve(provider, model string) Resolution {
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)

	if provider == "" {
		provider = r.defaultProvider
	}

	if _, ok := r.providers[provider]; !ok {
		return Resolution{
			Provider: r.defaultProvider,
			Model:    r.defaultModel,
			Fallback: true,
		}
	}

	if model == "" {
		if provider == r.defaultProvider {
			model = r.defaultModel
		} else {
			model = DefaultModels[provider]
		}
	}

	return Resolution{Provider: provider, Model: model}
}

func (r *Registry) Provider(name string) (llm.LLMProvider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists the registered providers in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
