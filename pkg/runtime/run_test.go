package runtime

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serverconfig "github.com/genmcp/safe-greeter/pkg/config/server"
)

func TestLoadServerConfig(t *testing.T) {
	tt := map[string]struct {
		fileContent       string
		env               map[string]string
		expectErr         bool
		expectedTransport string
		expectedPort      int
	}{
		"no file uses stdio": {
			expectedTransport: serverconfig.TransportProtocolStdio,
		},
		"http file": {
			fileContent: `kind: MCPServerConfig
schemaVersion: "0.1.0"
name: safe-greeter
version: "1.0.0"
runtime:
  transportProtocol: streamablehttp
  streamableHttpConfig:
    port: 9001
`,
			expectedTransport: serverconfig.TransportProtocolStreamableHttp,
			expectedPort:      9001,
		},
		"env switches transport and gets http defaults": {
			env: map[string]string{
				"GREETER_TRANSPORTPROTOCOL": "streamablehttp",
			},
			expectedTransport: serverconfig.TransportProtocolStreamableHttp,
			expectedPort:      serverconfig.DefaultPort,
		},
		"env overrides file port": {
			fileContent: `kind: MCPServerConfig
schemaVersion: "0.1.0"
name: safe-greeter
version: "1.0.0"
runtime:
  transportProtocol: streamablehttp
`,
			env: map[string]string{
				"GREETER_STREAMABLEHTTPCONFIG_PORT": "7000",
			},
			expectedTransport: serverconfig.TransportProtocolStreamableHttp,
			expectedPort:      7000,
		},
		"invalid file": {
			fileContent: `kind: MCPServerConfig
schemaVersion: "0.1.0"
name: safe-greeter
version: "1.0.0"
runtime:
  transportProtocol: streamablehttp
  streamableHttpConfig:
    port: 70000
`,
			expectErr: true,
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			path := ""
			if tc.fileContent != "" {
				path = filepath.Join(t.TempDir(), "greeter.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tc.fileContent), 0644))
			}

			cfg, err := LoadServerConfig(path)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedTransport, cfg.Runtime.TransportProtocol)
			if tc.expectedPort != 0 {
				require.NotNil(t, cfg.Runtime.StreamableHTTPConfig)
				assert.Equal(t, tc.expectedPort, cfg.Runtime.StreamableHTTPConfig.Port)
			}
		})
	}
}

func TestDoRunServerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Runtime.TransportProtocol = "smoke-signals"

	err := DoRunServer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server configuration")
}

func TestRunStreamableHTTPShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Runtime.TransportProtocol = serverconfig.TransportProtocolStreamableHttp
	cfg.Runtime.StreamableHTTPConfig = &serverconfig.StreamableHTTPConfig{Port: freePort(t)}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- DoRunServer(ctx, cfg)
	}()

	cancel()
	assert.NoError(t, <-errCh)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}
