package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/genmcp/safe-greeter/pkg/runtime"
)

// Serves the greet tool with the config named by GREETER_SERVER_CONFIG, or
// over stdio with built-in settings when it is unset.
func main() {
	configPath := os.Getenv("GREETER_SERVER_CONFIG")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runtime.RunServer(ctx, configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
