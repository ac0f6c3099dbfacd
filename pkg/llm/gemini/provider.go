package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"beaglemind-be/pkg/llm"

	"google.golang.org/genai"
)

type Provider struct {
	client *genai.Client
	model  string
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(apiKey, model string) (*Provider, error) {
	return newProvider(apiKey, model, "")
}

// newProvider allows an alternate endpoint; an empty baseURL keeps the SDK default.
func newProvider(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(llm.Options{Model: p.model, Temperature: -1}, options...)
	contents, config := toContents(history, opts)

	resp, err := p.client.Models.GenerateContent(ctx, opts.Model, contents, config)
	if err != nil {
		return "", &llm.DispatchError{Provider: p.Name(), Model: opts.Model, Err: err}
	}
	return resp.Text(), nil
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, options ...llm.Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		opts := llm.ApplyOptions(llm.Options{Model: p.model, Temperature: -1}, options...)
		contents, config := toContents(history, opts)

		for resp, err := range p.client.Models.GenerateContentStream(ctx, opts.Model, contents, config) {
			if err != nil {
				yield("", &llm.DispatchError{Provider: p.Name(), Model: opts.Model, Err: err})
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// toContents splits system messages into the system instruction; Gemini only knows
// the user and model roles.
func toContents(history []llm.Message, opts llm.Options) ([]*genai.Content, *genai.GenerateContentConfig) {
	var system []string
	contents := make([]*genai.Content, 0, len(history))

	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if opts.Temperature >= 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	return contents, config
}
