package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var payoutsCmd = &cobra.Command{
	Use:   "payouts",
	Short: "Inspect and decide payout requests from the command line",
}

var (
	resolveOutcome string

	submitName     string
	submitHours    string
	submitEarnings string
	submitAmount   string
	submitMethod   string
)

var listPayoutsCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending requests in stored order",
	RunE: withPayoutService(func(ctx context.Context, cmd *cobra.Command, svc *payout.Service, _ []string) error {
		pending, err := svc.LoadPending(ctx)
		if err != nil {
			return err
		}
		return printRequests(cmd.OutOrStdout(), pending)
	}),
}

var historyPayoutsCmd = &cobra.Command{
	Use:   "history",
	Short: "List resolved requests, newest first",
	RunE: withPayoutService(func(ctx context.Context, cmd *cobra.Command, svc *payout.Service, _ []string) error {
		view, err := svc.History(ctx)
		if err != nil {
			return err
		}
		if err := printRequests(cmd.OutOrStdout(), view.Requests); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\napproved %d (%s) rejected %d\n",
			view.Summary.ApprovedCount, view.Summary.ApprovedAmountTotal.StringFixed(2), view.Summary.RejectedCount)
		return nil
	}),
}

var resolvePayoutCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Approve or reject a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: withPayoutService(func(ctx context.Context, cmd *cobra.Command, svc *payout.Service, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid id %q", args[0])
		}
		outcome, err := payout.ParseOutcome(resolveOutcome)
		if err != nil {
			return err
		}

		resolved, err := svc.Resolve(ctx, id, outcome)
		if err != nil {
			return err
		}
		if resolved == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "request %d is not pending; nothing changed\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "request %d %s at %s\n", id, resolved.RequestStatus, resolved.Timestamp.Format(time.RFC3339))
		return nil
	}),
}

var submitPayoutCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new pending request",
	RunE: withPayoutService(func(ctx context.Context, cmd *cobra.Command, svc *payout.Service, _ []string) error {
		dto := payout.SubmitPayoutDTO{Name: submitName, PaymentMethod: submitMethod}

		for _, f := range []struct {
			flag string
			raw  string
			dst  *decimal.Decimal
		}{
			{"hours", submitHours, &dto.Hours},
			{"earnings", submitEarnings, &dto.Earnings},
			{"amount", submitAmount, &dto.PayoutAmount},
		} {
			v, err := decimal.NewFromString(f.raw)
			if err != nil {
				return fmt.Errorf("invalid --%s %q: %w", f.flag, f.raw, err)
			}
			*f.dst = v
		}

		created, err := svc.Submit(ctx, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "request %d submitted\n", created.ID)
		return nil
	}),
}

var statsPayoutsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard statistics as JSON",
	RunE: withPayoutService(func(ctx context.Context, cmd *cobra.Command, svc *payout.Service, _ []string) error {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}),
}

// withPayoutService opens the configured store for the duration of one command.
func withPayoutService(run func(ctx context.Context, cmd *cobra.Command, svc *payout.Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		lg := logger.L()

		store, err := openStore(ctx, cfg.Storage, lg)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := newPayoutService(cfg, store, nil, lg)
		if cfg.Payout.SeedOnStart {
			if _, err := svc.Initialize(ctx, payout.DefaultSeed()); err != nil {
				return err
			}
		}
		return run(ctx, cmd, svc, args)
	}
}

func printRequests(out io.Writer, requests []payout.PayoutRequest) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tHOURS\tEARNINGS\tPAYOUT\tMETHOD\tSTATUS\tDECIDED")
	for _, r := range requests {
		decided := "-"
		if r.Timestamp != nil {
			decided = r.Timestamp.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Hours.String(), r.Earnings.StringFixed(2), r.PayoutAmount.StringFixed(2),
			r.PaymentMethod, r.RequestStatus, decided)
	}
	return w.Flush()
}

func init() {
	resolvePayoutCmd.Flags().StringVarP(&resolveOutcome, "outcome", "o", "", "approve or reject")
	_ = resolvePayoutCmd.MarkFlagRequired("outcome")

	submitPayoutCmd.Flags().StringVar(&submitName, "name", "", "requester name")
	submitPayoutCmd.Flags().StringVar(&submitHours, "hours", "0", "hours worked")
	submitPayoutCmd.Flags().StringVar(&submitEarnings, "earnings", "0", "total earnings")
	submitPayoutCmd.Flags().StringVar(&submitAmount, "amount", "0", "payout amount")
	submitPayoutCmd.Flags().StringVar(&submitMethod, "method", "", "Wise, PayPal, Bitcoin or Gift Card")

	payoutsCmd.AddCommand(listPayoutsCmd, historyPayoutsCmd, resolvePayoutCmd, submitPayoutCmd, statsPayoutsCmd)
}
