// Package gateway dispatches named tool invocations to a static registry of
// handlers and returns their structured results.
//
// The registry is built once by New and is read-only afterwards, so a
// Gateway can be shared across goroutines without locking.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/genmcp/safe-greeter/pkg/greeter"
)

var (
	// ErrUnknownTool is returned when no handler is registered for a tool name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBadArguments is returned when arguments are missing or have the wrong shape.
	ErrBadArguments = errors.New("bad arguments")
)

// Arguments are the decoded JSON arguments of one invocation.
type Arguments map[string]any

// String returns the string argument stored under key.
func (a Arguments) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument %q", ErrBadArguments, key)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string, got %T", ErrBadArguments, key, v)
	}

	return s, nil
}

// Handler executes one tool. Arguments have already been checked against
// the tool's input schema when a Handler is called.
type Handler func(ctx context.Context, args Arguments) (greeter.Result, error)

// Tool is a registry entry.
type Tool struct {
	Name        string
	Title       string
	Description string
	InputSchema *jsonschema.Schema
	Handler     Handler

	resolved *jsonschema.Resolved
}

// Gateway holds the tool registry.
type Gateway struct {
	tools map[string]*Tool
}

// New builds a Gateway from the given tools. Every tool needs a name, a
// handler and an object input schema; duplicate names are rejected.
func New(tools ...Tool) (*Gateway, error) {
	g := &Gateway{
		tools: make(map[string]*Tool, len(tools)),
	}

	var err error
	for _, t := range tools {
		if t.Name == "" {
			err = errors.Join(err, fmt.Errorf("tool name is required"))
			continue
		}
		if t.Handler == nil {
			err = errors.Join(err, fmt.Errorf("tool %s: handler is required", t.Name))
			continue
		}
		if t.InputSchema == nil || t.InputSchema.Type != "object" {
			err = errors.Join(err, fmt.Errorf("tool %s: input schema must have type object", t.Name))
			continue
		}
		if _, exists := g.tools[t.Name]; exists {
			err = errors.Join(err, fmt.Errorf("tool %s: registered more than once", t.Name))
			continue
		}

		resolved, resolveErr := t.InputSchema.Resolve(nil)
		if resolveErr != nil {
			err = errors.Join(err, fmt.Errorf("tool %s: failed to resolve input schema: %w", t.Name, resolveErr))
			continue
		}

		tool := t
		tool.resolved = resolved
		g.tools[t.Name] = &tool
	}

	if err != nil {
		return nil, err
	}

	return g, nil
}

// Invoke runs the tool registered under toolName with the given arguments.
//
// A whitelist rejection is reported through the returned Result, not the
// error. The error is non-nil only for ErrUnknownTool, ErrBadArguments, or a
// failure inside the handler itself.
func (g *Gateway) Invoke(ctx context.Context, toolName string, arguments map[string]any) (greeter.Result, error) {
	tool, ok := g.tools[toolName]
	if !ok {
		return greeter.Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, toolName)
	}

	if arguments == nil {
		return greeter.Result{}, fmt.Errorf("%w: tool %s requires arguments", ErrBadArguments, toolName)
	}

	if err := tool.resolved.Validate(arguments); err != nil {
		return greeter.Result{}, fmt.Errorf("%w: tool %s: %w", ErrBadArguments, toolName, err)
	}

	return tool.Handler(ctx, Arguments(arguments))
}

// Lookup returns a copy of the tool registered under name.
func (g *Gateway) Lookup(name string) (Tool, bool) {
	t, ok := g.tools[name]
	if !ok {
		return Tool{}, false
	}
	return *t, true
}

// Tools returns the registered tools sorted by name.
func (g *Gateway) Tools() []Tool {
	tools := make([]Tool, 0, len(g.tools))
	for _, t := range g.tools {
		tools = append(tools, *t)
	}

	slices.SortFunc(tools, func(a, b Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tools
}
