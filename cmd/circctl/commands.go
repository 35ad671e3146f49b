package main

import (
	"context"
	"fmt"

	resdto "circulation-engine/internal/handler/dto/response"
	"circulation-engine/internal/usecase/circulation"

	"github.com/spf13/cobra"
)

func newSyncCmd(run engineRunner) *cobra.Command {
	var patron, pin string
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a patron's bookshelf with every vendor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			patronID, err := parseID("patron", patron)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context, engine circulation.Engine) error {
				shelf, err := engine.SyncBookshelf(ctx, patronID, pin, force)
				if err != nil {
					return err
				}
				res, err := resdto.FromBookshelf(shelf)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&patron, "patron", "", "patron ID")
	cmd.Flags().StringVar(&pin, "pin", "", "patron PIN, for vendors that need it")
	cmd.Flags().BoolVar(&force, "force", false, "sync even if the last sync is recent")
	_ = cmd.MarkFlagRequired("patron")
	return cmd
}

func newAvailabilityCmd(run engineRunner) *cobra.Command {
	var pool string

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Refresh a license pool's availability from its vendor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, err := parseID("pool", pool)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context, engine circulation.Engine) error {
				p, err := engine.RefreshAvailability(ctx, poolID)
				if err != nil {
					return err
				}
				res, err := resdto.FromPool(p)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "license pool ID")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}

func newRevokeCmd(run engineRunner) *cobra.Command {
	var patron, pool, pin string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Return a patron's loan, locally and at the vendor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			patronID, err := parseID("patron", patron)
			if err != nil {
				return err
			}
			poolID, err := parseID("pool", pool)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context, engine circulation.Engine) error {
				if _, err := engine.RevokeLoan(ctx, patronID, pin, poolID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loan on %s returned for patron %s\n", poolID, patronID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&patron, "patron", "", "patron ID")
	cmd.Flags().StringVar(&pool, "pool", "", "license pool ID")
	cmd.Flags().StringVar(&pin, "pin", "", "patron PIN, for vendors that need it")
	_ = cmd.MarkFlagRequired("patron")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}
