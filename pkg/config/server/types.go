package server

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/genmcp/safe-greeter/pkg/observability/logging"
)

const (
	TransportProtocolStreamableHttp = "streamablehttp"
	TransportProtocolStdio          = "stdio"
	KindMCPServerConfig             = "MCPServerConfig"
)

// StreamableHTTPConfig defines configuration for the HTTP-based runtime.
type StreamableHTTPConfig struct {
	// Port number to listen on.
	Port int `json:"port" jsonschema:"required"`

	// Base path for the MCP server (default: /mcp).
	BasePath string `json:"basePath,omitempty" jsonschema:"optional"`

	// Indicates whether the server is stateless (default: true when unset).
	Stateless *bool `json:"stateless,omitempty" jsonschema:"optional"`

	// TLS configuration for HTTPS.
	TLS *TLSConfig `json:"tls,omitempty" jsonschema:"optional"`

	// Health check configuration for k8s probes.
	Health *HealthConfig `json:"health,omitempty" jsonschema:"optional"`
}

// IsStateless reports whether the HTTP server runs without sessions.
func (s *StreamableHTTPConfig) IsStateless() bool {
	return s.Stateless == nil || *s.Stateless
}

// TLSConfig defines paths to TLS certificate and private key files.
type TLSConfig struct {
	// Absolute path to the server's public certificate.
	CertFile string `json:"certFile,omitempty" jsonschema:"optional"`

	// Absolute path to the server's private key.
	KeyFile string `json:"keyFile,omitempty" jsonschema:"optional"`
}

type HealthConfig struct {
	// Enable health endpoints (default: true when running HTTP)
	Enabled *bool `json:"enabled,omitempty" jsonschema:"optional"`

	// Path for liveness probe (default: /healthz)
	LivenessPath string `json:"livenessPath,omitempty" jsonschema:"optional"`

	// Path for readiness probe (default: /readyz)
	ReadinessPath string `json:"readinessPath,omitempty" jsonschema:"optional"`
}

// IsEnabled reports whether the health endpoints should be mounted.
func (h *HealthConfig) IsEnabled() bool {
	return h != nil && (h.Enabled == nil || *h.Enabled)
}

// StdioConfig defines configuration for stdio transport protocol.
type StdioConfig struct{}

// AuditConfig defines where invocation outcomes are recorded.
type AuditConfig struct {
	// Path to the SQLite database file. Use ":memory:" for a process-local log.
	DatabasePath string `json:"databasePath" jsonschema:"required"`
}

// ServerRuntime defines transport protocol and associated configuration.
type ServerRuntime struct {
	// Transport protocol to use (stdio or streamablehttp).
	TransportProtocol string `json:"transportProtocol" jsonschema:"required"`

	// Configuration for streamable HTTP transport protocol.
	StreamableHTTPConfig *StreamableHTTPConfig `json:"streamableHttpConfig,omitempty" jsonschema:"optional"`

	// Configuration for stdio transport protocol.
	StdioConfig *StdioConfig `json:"stdioConfig,omitempty" jsonschema:"optional"`

	// Configuration for the server logging
	LoggingConfig *logging.LoggingConfig `json:"loggingConfig,omitempty" jsonschema:"optional"`

	// Audit log of tool invocations. Disabled when unset.
	AuditConfig *AuditConfig `json:"auditConfig,omitempty" jsonschema:"optional"`

	baseLogger     *zap.Logger
	initLoggerOnce sync.Once
}

// GetBaseLogger returns the base logger for the server.
// If LoggingConfig is nil, it defaults to a console logger with info level
// writing to stderr, which keeps stdout free for the stdio transport.
// If LoggingConfig is provided but fails to build, it falls back to the same
// console logger. If the runtime is nil, it returns a no-op logger.
func (sr *ServerRuntime) GetBaseLogger() *zap.Logger {
	if sr == nil {
		return zap.NewNop()
	}

	sr.initLoggerOnce.Do(func() {
		if sr.LoggingConfig != nil {
			logger, err := sr.LoggingConfig.BuildBase()
			if err == nil && logger != nil {
				sr.baseLogger = logger
				return
			}

			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: Failed to build base logger, using default console logger: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "ERROR: BuildBase returned nil logger, using default console logger\n")
			}
		}

		sr.baseLogger = defaultConsoleLogger()
	})

	return sr.baseLogger
}

// SetBaseLogger replaces the base logger. It must be called before the
// first call to GetBaseLogger.
func (sr *ServerRuntime) SetBaseLogger(logger *zap.Logger) {
	sr.initLoggerOnce.Do(func() {
		sr.baseLogger = logger
	})
}

func defaultConsoleLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	config.Encoding = "console"
	config.OutputPaths = []string{"stderr"}
	logger, err := config.Build()
	if err != nil || logger == nil {
		return zap.NewNop()
	}
	return logger
}

// MCPServerConfig defines the identity and runtime configuration of the greeter server.
type MCPServerConfig struct {
	// Name reported to MCP clients during initialization.
	Name string `json:"name" jsonschema:"required"`

	// Version reported to MCP clients during initialization.
	Version string `json:"version" jsonschema:"required"`

	// Optional instructions sent to clients on initialization.
	Instructions string `json:"instructions,omitempty" jsonschema:"optional"`

	// Runtime configuration for the MCP server.
	Runtime *ServerRuntime `json:"runtime,omitempty" jsonschema:"optional"`
}

// MCPServerConfigFile is the root structure of a server config file (greeter.yaml).
type MCPServerConfigFile struct {
	// Kind identifies the type of config file.
	Kind string `json:"kind" jsonschema:"required"`

	// Version of the config file format.
	SchemaVersion string `json:"schemaVersion" jsonschema:"required"`

	// MCP server definition.
	MCPServerConfig `json:",inline"`
}
