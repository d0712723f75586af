package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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

	if err := app.Serve(ctx, a.Log, "planning_agent", a.PlanningPort, a.PlanningRouter); err != nil {
		a.Log.Error("agent exited with error", "error", err)
		os.Exit(1)
	}
}
