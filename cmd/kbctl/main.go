// Command kbctl is an operator tool for the BeagleMind backend. It runs the retrieval,
// prompt and planning pipelines locally against the configured services.
package main

import (
	"fmt"
	"os"

	"beaglemind-be/internal/config"
	"beaglemind-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	providerArg string
	modelArg    string

	cfg *config.Config
	log *logger.ZapLogger
)

var rootCmd = &cobra.Command{
	Use:   "kbctl",
	Short: "Inspect the BeagleMind retrieval and planning pipelines",
	Long: `kbctl runs the backend pipelines from the command line.

Available subcommands:
  context  - Show the grounded system prompt for a question
  ask      - Stream an answer for a question
  plan     - Generate a project plan
  commands - Suggest shell commands for a plan task
  events   - Tail usage events from NATS`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logger.NewConsoleLogger(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&providerArg, "provider", "", "LLM provider override")
	rootCmd.PersistentFlags().StringVar(&modelArg, "model", "", "LLM model override")

	rootCmd.AddCommand(contextCmd, askCmd, planCmd, commandsCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func heading(format string, a ...interface{}) {
	color.New(color.FgCyan, color.Bold).Println(fmt.Sprintf(format, a...))
}
