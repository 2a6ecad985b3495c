package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"venuebook/internal/cli"
	"venuebook/internal/views"
	"venuebook/pkg/app"
	"venuebook/pkg/config"
)

const ServiceName = "venuebook"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(func(ctx context.Context, n views.Notifier) (*app.Application, error) {
		cfg := config.Load(ServiceName)
		return app.NewApplication(ctx, cfg, app.WithNotifier(n))
	})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
