package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/genmcp/safe-greeter/pkg/gateway"
)

func init() {
	rootCmd.AddCommand(demoCmd)
	addConnectionFlags(demoCmd, &demoOpts)
}

var demoOpts connectionOptions

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Greet a valid name, a script tag and an unknown tool on one session",
	Run:   executeDemoCmd,
}

type demoCall struct {
	tool string
	name string
}

var demoCalls = []demoCall{
	{tool: gateway.GreetToolName, name: "Raphael"},
	{tool: gateway.GreetToolName, name: "<script>alert(1)</script>"},
	{tool: "farewell", name: "Raphael"},
}

func executeDemoCmd(cobraCmd *cobra.Command, args []string) {
	if err := cobra.NoArgs(cobraCmd, args); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	if err := runDemo(cobraCmd.Context(), os.Stdout, demoOpts); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
}

// runDemo keeps going after a failed call; only connection errors stop it.
func runDemo(ctx context.Context, out io.Writer, opts connectionOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	c, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	for _, call := range demoCalls {
		if err := printCall(ctx, out, c, call.tool, call.name); err != nil {
			fmt.Fprintf(out, "%s(%q) -> error: %s\n", call.tool, call.name, err)
		}
	}
	return nil
}
