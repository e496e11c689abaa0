package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/genmcp/safe-greeter/pkg/client"
	"github.com/genmcp/safe-greeter/pkg/gateway"
)

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVar(&callOpts.name, "name", "", "the name to greet")
	callCmd.Flags().StringVar(&callOpts.tool, "tool", gateway.GreetToolName, "the tool to call")
	addConnectionFlags(callCmd, &callOpts.connection)
	_ = callCmd.MarkFlagRequired("name")
}

var callOpts callOptions

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Call a tool on a safe-greeter server and print the result",
	Run:   executeCallCmd,
}

type connectionOptions struct {
	serverCommand string
	url           string
	timeout       time.Duration
}

type callOptions struct {
	connection connectionOptions
	tool       string
	name       string
}

func addConnectionFlags(cmd *cobra.Command, opts *connectionOptions) {
	cmd.Flags().StringVar(&opts.serverCommand, "server-command", "", "the command that starts a stdio server; this binary's serve command when neither this nor --url is set")
	cmd.Flags().StringVar(&opts.url, "url", "", "the streamable HTTP endpoint of a running server, e.g. http://localhost:8080/mcp")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "how long to wait for the server")
}

// transport picks the connection from the flags.
func (o connectionOptions) transport() (mcp.Transport, error) {
	switch {
	case o.serverCommand != "" && o.url != "":
		return nil, fmt.Errorf("--server-command and --url are mutually exclusive")
	case o.url != "":
		return client.HTTPTransport(o.url)
	case o.serverCommand != "":
		return client.CommandTransport(o.serverCommand)
	default:
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate the safe-greeter binary: %w", err)
		}
		return &mcp.CommandTransport{Command: exec.Command(exe, "serve")}, nil
	}
}

func (o connectionOptions) connect(ctx context.Context) (*client.Client, error) {
	transport, err := o.transport()
	if err != nil {
		return nil, err
	}
	return client.Connect(ctx, transport)
}

func executeCallCmd(cobraCmd *cobra.Command, args []string) {
	if err := cobra.NoArgs(cobraCmd, args); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	if err := runCall(cobraCmd.Context(), os.Stdout, callOpts); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
}

func runCall(ctx context.Context, out io.Writer, opts callOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.connection.timeout)
	defer cancel()

	c, err := opts.connection.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return printCall(ctx, out, c, opts.tool, opts.name)
}

// printCall prints the response envelope as JSON. A whitelist rejection is
// printed like any other result.
func printCall(ctx context.Context, out io.Writer, c *client.Client, tool, name string) error {
	res, err := c.Call(ctx, tool, map[string]any{gateway.NameArgument: name})
	if err != nil {
		return err
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = fmt.Fprintf(out, "%s(%q) -> %s\n", tool, name, data)
	return err
}
