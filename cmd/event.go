package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/events"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test events to an in-process bus and inspect what handlers receive`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: `Publish a test event to the event bus for testing and debugging.
Payout event types (payout.submitted, payout.approved, payout.rejected) are
built from the --payout-* flags; any other type carries --data as a message.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := buildTestEvent(args[0], time.Now())
		if err != nil {
			return err
		}
		return publishTestEvent(cmd, event)
	},
}

var (
	eventData     string
	eventPayoutID int64
	eventAmount   string
	eventName     string
	eventMethod   string
)

func buildTestEvent(eventType string, at time.Time) (events.Event, error) {
	switch eventType {
	case events.EventTypePayoutSubmitted, events.EventTypePayoutApproved, events.EventTypePayoutRejected:
		amount, err := decimal.NewFromString(eventAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid --payout-amount %q: %w", eventAmount, err)
		}
		if eventType == events.EventTypePayoutSubmitted {
			return events.NewPayoutSubmittedEvent(eventPayoutID, eventName, eventMethod, amount, at), nil
		}
		status := "Approved"
		if eventType == events.EventTypePayoutRejected {
			status = "Rejected"
		}
		return events.NewPayoutResolvedEvent(eventPayoutID, eventName, eventMethod, amount, status, at), nil
	default:
		return events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: at,
			Data: map[string]interface{}{
				"message": eventData,
				"source":  "cli-command",
			},
		}, nil
	}
}

func publishTestEvent(cmd *cobra.Command, event events.Event) error {
	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe(events.Wildcard, func(ctx context.Context, event events.Event) error {
		payload, err := json.MarshalIndent(event, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", payload)
		return nil
	})

	lg.Info("publishing test event", "event_type", event.EventType(), "event_id", event.EventID())

	if err := eventBus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventPayoutID, "payout-id", 1, "payout request id")
	publishEventCmd.Flags().StringVar(&eventAmount, "payout-amount", "1200", "payout amount")
	publishEventCmd.Flags().StringVar(&eventName, "payout-name", "John Doe", "requester name")
	publishEventCmd.Flags().StringVar(&eventMethod, "payout-method", "Wise", "payment method")

	eventCmd.AddCommand(publishEventCmd)
}
