package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"beaglemind-be/pkg/events"
	pktNats "beaglemind-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	eventType   string
	durableName string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail usage events from NATS",
	Long: `Tail the usage events the backend forwards to the NATS EVENTS stream.

Only events published after the consumer is created are shown.`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventType, "type", "", "event type filter, e.g. chat.completed")
	eventsCmd.Flags().StringVar(&durableName, "durable", "kbctl", "durable consumer name")
}

func runEvents(cmd *cobra.Command, args []string) error {
	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, log)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	subject := pktNats.SubjectPrefix + ">"
	if eventType != "" {
		subject = pktNats.SubjectPrefix + eventType
	}

	color.Cyan("Listening on %s (Ctrl+C to stop)", subject)
	return sub.Subscribe(ctx, subject, durableName, func(_ context.Context, event events.Event) error {
		data, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		color.Green("%s %s", event.Timestamp().Local().Format(time.TimeOnly), event.EventType())
		color.White("  %s", data)
		return nil
	})
}
