package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/genmcp/safe-greeter/pkg/runtime"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveServerConfigPath, "server-config", "s", "", "the path to the server config file; stdio with built-in settings when unset")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "a dotenv file with GREETER_* overrides, skipped if it does not exist")
}

var serveServerConfigPath string
var serveEnvFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the greet tool until the transport closes",
	Run:   executeServeCmd,
}

// stdout carries the stdio transport, so everything here reports on stderr
func executeServeCmd(cobraCmd *cobra.Command, args []string) {
	if err := cobra.NoArgs(cobraCmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if err := loadEnvFile(serveEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file: %s\n", err)
		os.Exit(1)
	}

	configPath := ""
	if serveServerConfigPath != "" {
		abs, err := filepath.Abs(serveServerConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve server config file path: %s\n", err)
			os.Exit(1)
		}
		configPath = abs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runtime.RunServer(ctx, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "safe-greeter server failed with %s\n", err)
		stop()
		os.Exit(1)
	}
}

// loadEnvFile exports the variables in path without overriding ones already
// set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	return godotenv.Load(path)
}
