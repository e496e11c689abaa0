package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/genmcp/safe-greeter/pkg/config"
)

// ParseMCPFile parses a server config file (greeter.yaml) and applies defaults.
func ParseMCPFile(path string) (*MCPServerConfigFile, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path to server config file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read server config file: %w", err)
	}

	return ParseMCPFileBytes(data)
}

// ParseMCPFileBytes parses the contents of a server config file and applies defaults.
func ParseMCPFileBytes(data []byte) (*MCPServerConfigFile, error) {
	mcpFile := &MCPServerConfigFile{}

	if err := yaml.Unmarshal(data, mcpFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server config file: %w", err)
	}

	mcpFile.ApplyDefaults()

	return mcpFile, nil
}

func (m *MCPServerConfigFile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if k, ok := raw["kind"]; ok {
		if err := json.Unmarshal(k, &m.Kind); err != nil {
			return err
		}
	}

	if m.Kind == "" {
		return fmt.Errorf("kind field is required, expected %s", KindMCPServerConfig)
	}
	if m.Kind != KindMCPServerConfig {
		return fmt.Errorf("invalid kind %s, expected %s", m.Kind, KindMCPServerConfig)
	}

	if fv, ok := raw["schemaVersion"]; ok {
		if err := json.Unmarshal(fv, &m.SchemaVersion); err != nil {
			return err
		}
	}

	if m.SchemaVersion != config.SchemaVersion {
		return fmt.Errorf("invalid schema version %s, expected %s - please migrate your file and handle any breaking changes", m.SchemaVersion, config.SchemaVersion)
	}

	return json.Unmarshal(data, &m.MCPServerConfig)
}
