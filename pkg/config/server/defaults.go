package server

import "k8s.io/utils/ptr"

// Default values for server configuration.
const (
	// DefaultName is the server name reported to clients when none is configured.
	DefaultName = "safe-greeter"

	// DefaultVersion is the server version reported to clients when none is configured.
	DefaultVersion = "1.0.0"

	// DefaultBasePath is the default base path for the MCP server.
	DefaultBasePath = "/mcp"

	// DefaultPort is the default port for the streamable HTTP server.
	DefaultPort = 8080

	// DefaultLivenessPath is the default path for the liveness probe endpoint.
	DefaultLivenessPath = "/healthz"

	// DefaultReadinessPath is the default path for the readiness probe endpoint.
	DefaultReadinessPath = "/readyz"
)

// Default returns the configuration used when no config file is given:
// the greeter served over stdio.
func Default() *MCPServerConfig {
	cfg := &MCPServerConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults applies default values to the MCPServerConfig after parsing.
func (s *MCPServerConfig) ApplyDefaults() {
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.Version == "" {
		s.Version = DefaultVersion
	}
	if s.Runtime == nil {
		s.Runtime = &ServerRuntime{}
	}
	s.Runtime.ApplyDefaults()
}

// ApplyDefaults applies default values to the MCPServerConfigFile after parsing.
func (m *MCPServerConfigFile) ApplyDefaults() {
	m.MCPServerConfig.ApplyDefaults()
}

// ApplyDefaults applies default values to ServerRuntime. The transport
// defaults to stdio.
func (r *ServerRuntime) ApplyDefaults() {
	if r.TransportProtocol == "" {
		r.TransportProtocol = TransportProtocolStdio
	}

	if r.TransportProtocol == TransportProtocolStreamableHttp {
		if r.StreamableHTTPConfig == nil {
			r.StreamableHTTPConfig = &StreamableHTTPConfig{}
		}
		r.StreamableHTTPConfig.ApplyDefaults()
	}
}

// ApplyDefaults applies default values to StreamableHTTPConfig.
func (s *StreamableHTTPConfig) ApplyDefaults() {
	if s.Port <= 0 {
		s.Port = DefaultPort
	}
	if s.BasePath == "" {
		s.BasePath = DefaultBasePath
	}
	if s.Stateless == nil {
		s.Stateless = ptr.To(true)
	}

	if s.Health == nil {
		s.Health = &HealthConfig{}
	}
	s.Health.ApplyDefaults()
}

// ApplyDefaults applies default values to HealthConfig.
func (h *HealthConfig) ApplyDefaults() {
	if h.Enabled == nil {
		h.Enabled = ptr.To(true)
	}
	if h.LivenessPath == "" {
		h.LivenessPath = DefaultLivenessPath
	}
	if h.ReadinessPath == "" {
		h.ReadinessPath = DefaultReadinessPath
	}
}
