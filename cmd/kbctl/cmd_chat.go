package main

import (
	"fmt"
	"strings"

	"beaglemind-be/internal/bootstrap"
	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/service"
	"beaglemind-be/pkg/llm/factory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var toolArg string

// contextCmd prints the system prompt a chat turn would send, without calling a model.
var contextCmd = &cobra.Command{
	Use:   "context <question>",
	Short: "Show the grounded system prompt for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContext,
}

// askCmd streams a single-turn answer to stdout.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Stream an answer for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	for _, cmd := range []*cobra.Command{contextCmd, askCmd} {
		cmd.Flags().StringVar(&toolArg, "tool", "", "mode hint: search, code or explain")
	}
}

func newChatService() (service.IChatService, error) {
	registry, err := bootstrap.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}

	return service.NewChatService(
		bootstrap.NewRetriever(cfg.Knowledge, bootstrap.NewRedis(cfg.App.RedisURL, log), log),
		factory.NewDispatcher(registry, log),
		bootstrap.NewTokenCounter(cfg.Ai.TokenizerEncoding, log),
		service.NewNopPublisherService(),
		service.ChatSettings{
			ContextResults: cfg.Knowledge.ContextResults,
			CharBudget:     cfg.Knowledge.CharBudget,
		},
		log,
	), nil
}

func questionRequest(args []string) *dto.ChatRequest {
	return &dto.ChatRequest{
		Messages: []dto.ChatMessage{{Role: "user", Content: strings.Join(args, " ")}},
		Data:     dto.ChatRequestData{Tool: toolArg},
		Provider: providerArg,
		Model:    modelArg,
	}
}

func printMeta(meta dto.ChatMeta) {
	color.Yellow("provider=%s model=%s fallback=%t retrieval=%s included=%d prompt_tokens=%d",
		meta.Provider, meta.Model, meta.Fallback, meta.Retrieval, meta.Included, meta.Tokens)
}

func runContext(cmd *cobra.Command, args []string) error {
	chat, err := newChatService()
	if err != nil {
		return err
	}

	turn, err := chat.Prepare(cmd.Context(), questionRequest(args))
	if err != nil {
		return err
	}

	printMeta(turn.Meta)
	if len(turn.Context.Sources) > 0 {
		heading("\nSources")
		for _, src := range turn.Context.Sources {
			fmt.Println(src.Line())
		}
	}
	heading("\nSystem prompt")
	fmt.Println(turn.SystemPrompt)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	chat, err := newChatService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	turn, err := chat.Start(ctx, questionRequest(args))
	if err != nil {
		return err
	}
	printMeta(turn.Meta)

	var output strings.Builder
	var streamErr error
	for fragment, err := range turn.Stream {
		if err != nil {
			streamErr = err
			break
		}
		output.WriteString(fragment)
		fmt.Print(fragment)
	}
	fmt.Println()

	chat.Finish(ctx, turn, "cli", output.String(), streamErr)
	return streamErr
}
