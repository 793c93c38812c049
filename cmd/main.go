package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"uyadmin.io/cli/internal/interfaces/cli"
	"uyadmin.io/cli/internal/interfaces/di"
)

func main() {
	container := di.NewContainer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, container.GetCLIContainer())
	stop()

	_ = container.Shutdown(context.Background())
	os.Exit(code)
}
