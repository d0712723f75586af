// Runs all four agents in one process, each on its own port. The per-agent
// binaries under cmd/<agent> run them separately.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/finbridge/finlit-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Serve(gctx, a.Log, "assessment_agent", a.AssessmentPort, a.AssessmentRouter)
	})
	g.Go(func() error {
		return app.Serve(gctx, a.Log, "planning_agent", a.PlanningPort, a.PlanningRouter)
	})
	g.Go(func() error {
		return app.Serve(gctx, a.Log, "content_delivery_agent", a.ContentPort, a.ContentRouter)
	})
	g.Go(func() error {
		return app.Serve(gctx, a.Log, "progress_agent", a.ProgressPort, a.ProgressRouter)
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("agent exited with error", "error", err)
		os.Exit(1)
	}
}
