// Package logging wires zap loggers to the greeter server.
//
// A base logger is built once from LoggingConfig and writes to ordinary
// outputs (stderr by default, since stdout carries the stdio transport).
// Per request, the MCP middleware derives a logger that also forwards
// entries to the connected client through ServerSession.Log:
//
//	base, err := cfg.BuildBase()
//	if err != nil {
//		return err
//	}
//	server.AddReceivingMiddleware(logging.WithLoggingMiddleware(base, cfg.MCPLogsEnabled()))
//
// Tool handlers then use FromContext for messages the client may see and
// BaseFromContext for details that must stay on the server.
//
// zap levels map to MCP levels as debug, info, warning, error, critical
// (DPanic), alert (Panic) and emergency (Fatal).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig provides a JSON-schema friendly configuration for logging
// that can be converted to a zap.Config when needed.
type LoggingConfig struct {
	// Level is the minimum enabled logging level (debug, info, warn, error, dpanic, panic, fatal)
	Level string `json:"level,omitempty" jsonschema:"optional"`
	// Development puts the logger in development mode
	Development bool `json:"development,omitempty" jsonschema:"optional"`
	// DisableCaller stops annotating logs with the calling function's file name and line number
	DisableCaller bool `json:"disableCaller,omitempty" jsonschema:"optional"`
	// DisableStacktrace completely disables automatic stacktrace capturing
	DisableStacktrace bool `json:"disableStacktrace,omitempty" jsonschema:"optional"`
	// Encoding sets the logger's encoding ("json" or "console")
	Encoding string `json:"encoding,omitempty" jsonschema:"optional"`
	// OutputPaths is a list of URLs or file paths to write logging output to (default: stderr)
	OutputPaths []string `json:"outputPaths,omitempty" jsonschema:"optional"`
	// ErrorOutputPaths is a list of URLs to write internal logger errors to
	ErrorOutputPaths []string `json:"errorOutputPaths,omitempty" jsonschema:"optional"`
	// InitialFields is a collection of fields to add to the root logger
	InitialFields map[string]interface{} `json:"initialFields,omitempty" jsonschema:"optional"`
	// EnableMcpLogs controls whether logs are sent to MCP clients (default: true)
	EnableMcpLogs *bool `json:"enableMcpLogs,omitempty" jsonschema:"optional"`
}

// MCPLogsEnabled returns whether the mcp logs are enabled, defaulting to true if unset
func (lc *LoggingConfig) MCPLogsEnabled() bool {
	if lc == nil || lc.EnableMcpLogs == nil {
		return true
	}

	return *lc.EnableMcpLogs
}

func (lc *LoggingConfig) toZapConfig() (zap.Config, error) {
	var config zap.Config

	switch lc.Encoding {
	case "console":
		config = zap.NewDevelopmentConfig()
	default:
		config = zap.NewProductionConfig()
	}

	// both presets would otherwise disagree on where output goes
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if lc.Level != "" {
		level, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return config, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}

	if lc.Encoding != "" {
		config.Encoding = lc.Encoding
	}

	config.Development = lc.Development
	config.DisableCaller = lc.DisableCaller
	config.DisableStacktrace = lc.DisableStacktrace

	if len(lc.OutputPaths) > 0 {
		config.OutputPaths = lc.OutputPaths
	}

	if len(lc.ErrorOutputPaths) > 0 {
		config.ErrorOutputPaths = lc.ErrorOutputPaths
	}

	if lc.InitialFields != nil {
		config.InitialFields = lc.InitialFields
	}

	return config, nil
}

// BuildBase creates the base logger described by the configuration. Call it
// once at startup and derive request loggers from the result.
func (lc *LoggingConfig) BuildBase() (*zap.Logger, error) {
	config, err := lc.toZapConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to convert to zap config: %w", err)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build base zap logger: %w", err)
	}
	return logger, nil
}
