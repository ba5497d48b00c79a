package cmd

import (
	"context"
	"fmt"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
	"github.com/spf13/cobra"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with the sample pending requests",
	Long:  `Write the three sample pending requests when no pending collection is stored yet. With --clear both collections are dropped first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if clearData {
			if err := svc.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared pending and history collections")
		}

		seeded, err := svc.Initialize(ctx, payout.DefaultSeed())
		if err != nil {
			return err
		}
		if seeded {
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d pending requests\n", len(payout.DefaultSeed()))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Pending collection already present; nothing seeded")
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
