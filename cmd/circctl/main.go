package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"circulation-engine/cmd/bootstrap"
	"circulation-engine/internal/usecase/circulation"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const startTimeout = 30 * time.Second

func main() {
	if err := newRootCmd(runWithEngine).Execute(); err != nil {
		os.Exit(1)
	}
}

// engineRunner starts the application graph, hands the engine to fn and
// stops the graph afterwards so buffered analytics events are flushed.
type engineRunner func(ctx context.Context, fn func(ctx context.Context, engine circulation.Engine) error) error

func runWithEngine(ctx context.Context, fn func(ctx context.Context, engine circulation.Engine) error) error {
	var engine circulation.Engine
	app := fx.New(
		bootstrap.CoreModule,
		fx.Populate(&engine),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, engine)
}

func newRootCmd(run engineRunner) *cobra.Command {
	root := &cobra.Command{
		Use:          "circctl",
		Short:        "Operator tools for the circulation engine",
		SilenceUsage: true,
	}
	root.AddCommand(
		newSyncCmd(run),
		newAvailabilityCmd(run),
		newRevokeCmd(run),
	)
	return root
}

func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: %w", name, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
