package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	querybus "moodi-backend/application/queries/bus"
	"moodi-backend/infrastructure/config"
	"moodi-backend/infrastructure/di"
	"moodi-backend/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend := func(ctx context.Context) (*querybus.QueryBus, func(), error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		// Keep CLI output clean
		cfg.LogLevel = "error"
		container, cleanup, err := di.InitializeContainer(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return container.QueryBus, cleanup, nil
	}

	if err := cli.NewRootCommand(backend).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
