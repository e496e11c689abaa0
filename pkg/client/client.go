// Package client calls tools on a greeter server and decodes the response
// envelope back into a greeter.Result.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/genmcp/safe-greeter/pkg/gateway"
	"github.com/genmcp/safe-greeter/pkg/greeter"
)

const (
	ClientName    = "safe-greeter-client"
	ClientVersion = "1.0.0"
)

var (
	// ErrToolError is returned when the server marks a tool result as an error,
	// e.g. for arguments that do not match the tool's input schema.
	ErrToolError = errors.New("tool returned an error")

	// ErrMalformedResponse is returned when a result carries no greeter envelope.
	ErrMalformedResponse = errors.New("malformed tool response")
)

// Client is a connected MCP client session.
type Client struct {
	session *mcp.ClientSession
}

// Connect opens a session over transport.
func Connect(ctx context.Context, transport mcp.Transport) (*Client, error) {
	c := mcp.NewClient(&mcp.Implementation{
		Name:    ClientName,
		Version: ClientVersion,
	}, nil)

	session, err := c.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return &Client{session: session}, nil
}

// CommandTransport spawns command (split with shell quoting rules) and talks
// to it over stdio.
func CommandTransport(command string) (mcp.Transport, error) {
	parts, err := shlex.Split(strings.TrimSpace(command))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server command %q: %w", command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("server command is empty")
	}

	return &mcp.CommandTransport{Command: exec.Command(parts[0], parts[1:]...)}, nil
}

// HTTPTransport talks to a streamable HTTP endpoint such as http://localhost:8080/mcp.
func HTTPTransport(endpoint string) (mcp.Transport, error) {
	endpoint = strings.TrimSpace(endpoint)
	lowered := strings.ToLower(endpoint)
	if !strings.HasPrefix(lowered, "http://") && !strings.HasPrefix(lowered, "https://") {
		return nil, fmt.Errorf("server url must start with http:// or https://, received %q", endpoint)
	}

	return &mcp.StreamableClientTransport{Endpoint: endpoint}, nil
}

// Call invokes toolName and decodes the result. A whitelist rejection is a
// Failure Result with a nil error.
func (c *Client) Call(ctx context.Context, toolName string, args map[string]any) (greeter.Result, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		return greeter.Result{}, fmt.Errorf("failed to call tool %s: %w", toolName, err)
	}

	if res.IsError {
		return greeter.Result{}, fmt.Errorf("%w: %s", ErrToolError, textOf(res))
	}

	return DecodeResult(res)
}

// Greet calls the greet tool.
func (c *Client) Greet(ctx context.Context, name string) (greeter.Result, error) {
	return c.Call(ctx, gateway.GreetToolName, map[string]any{gateway.NameArgument: name})
}

// Tools returns the names of the tools the server exposes.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	var names []string
	params := &mcp.ListToolsParams{}
	for {
		res, err := c.session.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		for _, tool := range res.Tools {
			names = append(names, tool.Name)
		}
		if res.NextCursor == "" {
			return names, nil
		}
		params.Cursor = res.NextCursor
	}
}

// Close ends the session and, for command transports, the server process.
func (c *Client) Close() error {
	return c.session.Close()
}

// DecodeResult reads the greeter envelope from structured content, falling
// back to the first text block.
func DecodeResult(res *mcp.CallToolResult) (greeter.Result, error) {
	var raw []byte
	if res.StructuredContent != nil {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return greeter.Result{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		raw = data
	} else {
		text := textOf(res)
		if text == "" {
			return greeter.Result{}, fmt.Errorf("%w: no content", ErrMalformedResponse)
		}
		raw = []byte(text)
	}

	var envelope greeter.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return greeter.Result{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	result, err := envelope.Result()
	if err != nil {
		return greeter.Result{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return result, nil
}

func textOf(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
