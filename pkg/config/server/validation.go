package server

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/genmcp/safe-greeter/pkg/config"
)

func (m *MCPServerConfigFile) Validate() error {
	var err error = nil
	if m.Kind != KindMCPServerConfig {
		err = errors.Join(err, fmt.Errorf("invalid config file: kind must be %s, received %q", KindMCPServerConfig, m.Kind))
	}

	if m.SchemaVersion != config.SchemaVersion {
		err = errors.Join(err, fmt.Errorf("invalid config file: schemaVersion must be %s, received %q", config.SchemaVersion, m.SchemaVersion))
	}

	if serverErr := m.MCPServerConfig.Validate(); serverErr != nil {
		err = errors.Join(err, serverErr)
	}

	return err
}

func (s *MCPServerConfig) Validate() error {
	var err error = nil
	if s.Name == "" {
		err = errors.Join(err, fmt.Errorf("invalid server: name is required"))
	}

	if s.Version == "" {
		err = errors.Join(err, fmt.Errorf("invalid server: version is required"))
	}

	if s.Runtime == nil {
		err = errors.Join(err, fmt.Errorf("invalid server: runtime is required"))
	} else if runtimeErr := s.Runtime.Validate(); runtimeErr != nil {
		err = errors.Join(err, fmt.Errorf("invalid server, runtime is invalid: %w", runtimeErr))
	}

	return err
}

func (r *ServerRuntime) Validate() error {
	var err error = nil
	switch r.TransportProtocol {
	case TransportProtocolStdio:
		// stdout carries the protocol, so logs must go elsewhere
		if r.LoggingConfig != nil && slices.Contains(r.LoggingConfig.OutputPaths, "stdout") {
			err = errors.Join(err, fmt.Errorf("loggingConfig.outputPaths cannot contain stdout when using the %s transport", TransportProtocolStdio))
		}
	case TransportProtocolStreamableHttp:
		if r.StreamableHTTPConfig == nil {
			err = errors.Join(
				err,
				fmt.Errorf(
					"transportProtocol is %s, but streamableHttpConfig is not set",
					TransportProtocolStreamableHttp,
				),
			)
			break
		}

		if httpErr := r.StreamableHTTPConfig.Validate(); httpErr != nil {
			err = errors.Join(err, httpErr)
		}
	default:
		err = errors.Join(
			err,
			fmt.Errorf(
				"invalid runtime: transport protocol must be one of (%s, %s), received %s",
				TransportProtocolStdio,
				TransportProtocolStreamableHttp,
				r.TransportProtocol,
			),
		)
	}

	if r.AuditConfig != nil && r.AuditConfig.DatabasePath == "" {
		err = errors.Join(err, fmt.Errorf("auditConfig.databasePath is required when auditConfig is set"))
	}

	return err
}

func (s *StreamableHTTPConfig) Validate() error {
	var err error = nil
	if s.Port <= 0 || s.Port > 65535 {
		err = errors.Join(err, fmt.Errorf("streamableHttpConfig.port must be between 1 and 65535, received %d", s.Port))
	}

	if !strings.HasPrefix(s.BasePath, "/") {
		err = errors.Join(err, fmt.Errorf("streamableHttpConfig.basePath must start with /, received %q", s.BasePath))
	}

	if s.TLS != nil && (s.TLS.CertFile == "" || s.TLS.KeyFile == "") {
		err = errors.Join(err, fmt.Errorf("streamableHttpConfig.tls requires both certFile and keyFile"))
	}

	if s.Health.IsEnabled() {
		if !strings.HasPrefix(s.Health.LivenessPath, "/") || !strings.HasPrefix(s.Health.ReadinessPath, "/") {
			err = errors.Join(err, fmt.Errorf("streamableHttpConfig.health paths must start with /"))
		}
		if s.Health.LivenessPath == s.BasePath || s.Health.ReadinessPath == s.BasePath {
			err = errors.Join(err, fmt.Errorf("streamableHttpConfig.health paths must differ from basePath %s", s.BasePath))
		}
	}

	return err
}
