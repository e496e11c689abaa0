package gateway

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/genmcp/safe-greeter/pkg/greeter"
)

const (
	GreetToolName = "greet"
	NameArgument  = "name"
)

// GreetTool is the registry entry for the greet tool.
func GreetTool() Tool {
	return Tool{
		Name:        GreetToolName,
		Title:       "Greet",
		Description: "Greet someone by name. Only letters and spaces are accepted, up to 30 characters.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				NameArgument: {
					Type:        "string",
					Description: "The name of the person to greet.",
				},
			},
			Required: []string{NameArgument},
			// no extra arguments
			AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
		},
		Handler: func(_ context.Context, args Arguments) (greeter.Result, error) {
			name, err := args.String(NameArgument)
			if err != nil {
				return greeter.Result{}, err
			}

			return greeter.Greet(name), nil
		},
	}
}

// NewGreeter returns a Gateway serving only the greet tool.
func NewGreeter() (*Gateway, error) {
	return New(GreetTool())
}
