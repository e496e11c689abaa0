package runtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	serverconfig "github.com/genmcp/safe-greeter/pkg/config/server"
	"github.com/genmcp/safe-greeter/pkg/gateway"
)

// LoadServerConfig reads the server config at path, or returns the built-in
// stdio configuration when path is empty. Overrides from GREETER_*
// environment variables are applied on top; a bad override is logged and
// skipped.
func LoadServerConfig(path string) (*serverconfig.MCPServerConfig, error) {
	var cfg *serverconfig.MCPServerConfig
	if path == "" {
		cfg = serverconfig.Default()
	} else {
		file, err := serverconfig.ParseMCPFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse server config file: %w", err)
		}
		if err := file.Validate(); err != nil {
			return nil, fmt.Errorf("server config file is invalid: %w", err)
		}
		cfg = &file.MCPServerConfig
	}

	envOverrider := serverconfig.NewEnvRuntimeOverrider()
	if err := envOverrider.ApplyOverrides(cfg.Runtime); err != nil {
		cfg.Runtime.GetBaseLogger().Warn("Failed to apply overrides from env vars to the server runtime",
			zap.String("server_name", cfg.Name),
			zap.Error(err))
	}
	// overrides may switch transports, which needs new defaults
	cfg.ApplyDefaults()

	return cfg, nil
}

// RunServer serves the greet tool with the config at serverConfigPath.
func RunServer(ctx context.Context, serverConfigPath string) error {
	cfg, err := LoadServerConfig(serverConfigPath)
	if err != nil {
		return err
	}

	if serverConfigPath != "" {
		cfg.Runtime.GetBaseLogger().Info(fmt.Sprintf("Using server config from %s", serverConfigPath))
	}

	return DoRunServer(ctx, cfg)
}

// DoRunServer validates cfg and serves the greet tool until ctx is done.
func DoRunServer(ctx context.Context, cfg *serverconfig.MCPServerConfig) error {
	cfg.ApplyDefaults()
	logger := cfg.Runtime.GetBaseLogger()
	logger.Info("Starting MCP server",
		zap.String("server_name", cfg.Name),
		zap.String("server_version", cfg.Version),
		zap.String("transport_protocol", cfg.Runtime.TransportProtocol))

	if err := cfg.Validate(); err != nil {
		logger.Error("Server configuration validation failed before running",
			zap.String("server_name", cfg.Name),
			zap.Error(err))
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	gw, err := gateway.NewGreeter()
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	s, err := NewServer(ctx, cfg, gw)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close server resources", zap.Error(err))
		}
		_ = logger.Sync()
	}()

	return s.Run(ctx)
}
