package main

import (
	"encoding/json"
	"fmt"

	"beaglemind-be/internal/bootstrap"
	"beaglemind-be/pkg/llm/factory"
	"beaglemind-be/pkg/wizard"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	planReq    wizard.Request
	commandReq wizard.CommandRequest
	jsonOut    bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a project plan",
	Long: `Generate a phased project plan the way the /wizard endpoint does.

When the model fails or returns an unusable plan the heuristic template is printed
and the reason is shown.`,
	RunE: runPlan,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Suggest shell commands for a plan task",
	RunE:  runCommands,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planReq.Goals, "goals", "", "what the project should achieve (required)")
	f.StringVar(&planReq.Hardware, "hardware", "", "target board (required)")
	f.StringVar(&planReq.Experience, "experience", "", "beginner, intermediate or advanced (required)")
	f.StringVar(&planReq.Focus, "focus", "", "focus area")
	f.StringVar(&planReq.Language, "language", "", "implementation language")
	f.BoolVar(&jsonOut, "json", false, "print the raw plan as JSON")

	f = commandsCmd.Flags()
	f.StringVar(&commandReq.TaskTitle, "task", "", "task title (required)")
	f.StringVar(&commandReq.Detail, "detail", "", "task detail (required)")
	f.StringVar(&commandReq.Hardware, "hardware", "", "target board (required)")
	f.StringVar(&commandReq.Language, "language", "", "implementation language")
	f.StringVar(&commandReq.Goals, "goals", "", "project goals")
}

func newSynthesizer() (*wizard.Synthesizer, error) {
	registry, err := bootstrap.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	retriever := bootstrap.NewRetriever(cfg.Knowledge, bootstrap.NewRedis(cfg.App.RedisURL, log), log)
	return bootstrap.NewSynthesizer(cfg, retriever, factory.NewDispatcher(registry, log), log), nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	synth, err := newSynthesizer()
	if err != nil {
		return err
	}

	planReq.Provider, planReq.Model = providerArg, modelArg
	res, err := synth.Plan(cmd.Context(), planReq)
	if err != nil {
		return err
	}

	color.Yellow("mode=%s provider=%s model=%s included=%d", res.Mode, res.Resolution.Provider, res.Resolution.Model, res.Included)
	if res.Reason != "" {
		color.Red("fallback reason: %s", res.Reason)
	}

	if jsonOut {
		b, err := json.MarshalIndent(res.Plan, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	heading("\n%s", res.Plan.Summary)
	for i, phase := range res.Plan.Phases {
		heading("\n%d. %s", i+1, phase.Title)
		fmt.Println("   " + phase.Objective)
		for _, task := range phase.Tasks {
			fmt.Printf("   - %s (%.1fh)\n", task.Title, task.EstHours)
		}
	}
	if len(res.Plan.NextActions) > 0 {
		heading("\nNext actions")
		for _, a := range res.Plan.NextActions {
			fmt.Println(" * " + a)
		}
	}
	return nil
}

func runCommands(cmd *cobra.Command, args []string) error {
	synth, err := newSynthesizer()
	if err != nil {
		return err
	}

	commandReq.Provider, commandReq.Model = providerArg, modelArg
	suggestion, res, err := synth.SuggestCommands(cmd.Context(), commandReq)
	if err != nil {
		return err
	}

	color.Yellow("provider=%s model=%s", res.Provider, res.Model)
	for _, c := range suggestion.Commands {
		color.Green("$ %s", c.Cmd)
		if c.Explanation != "" {
			fmt.Println("  " + c.Explanation)
		}
	}
	if suggestion.Code != "" {
		heading("\nCode")
		fmt.Println(suggestion.Code)
	}
	return nil
}
