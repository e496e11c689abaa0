package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/genmcp/safe-greeter/pkg/observability/logging"
)

func TestEnvOverrides(t *testing.T) {
	tt := map[string]struct {
		initialRuntime  *ServerRuntime
		expectedRuntime *ServerRuntime
		env             map[string]string
		expectErr       bool
	}{
		"no overrides": {
			initialRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
			},
			expectedRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
			},
		},
		"override transport protocol": {
			initialRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
			},
			expectedRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStreamableHttp,
			},
			env: map[string]string{
				"GREETER_TRANSPORTPROTOCOL": "streamablehttp",
			},
		},
		"override nested port": {
			initialRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStreamableHttp,
				StreamableHTTPConfig: &StreamableHTTPConfig{
					Port: 8080,
				},
			},
			expectedRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStreamableHttp,
				StreamableHTTPConfig: &StreamableHTTPConfig{
					Port: 9000,
				},
			},
			env: map[string]string{
				"GREETER_STREAMABLEHTTPCONFIG_PORT": "9000",
			},
		},
		"creates unset nested struct when overridden": {
			initialRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
			},
			expectedRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
				AuditConfig: &AuditConfig{
					DatabasePath: "/var/lib/greeter/audit.db",
				},
			},
			env: map[string]string{
				"GREETER_AUDITCONFIG_DATABASEPATH": "/var/lib/greeter/audit.db",
			},
		},
		"overrides slices and maps in logging config": {
			initialRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
				LoggingConfig:     &logging.LoggingConfig{Level: "info"},
			},
			expectedRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
				LoggingConfig: &logging.LoggingConfig{
					Level:         "info",
					OutputPaths:   []string{"stderr", "/tmp/greeter.log"},
					InitialFields: map[string]interface{}{"service": "greeter"},
				},
			},
			env: map[string]string{
				"GREETER_LOGGINGCONFIG_OUTPUTPATHS":   "stderr,/tmp/greeter.log",
				"GREETER_LOGGINGCONFIG_INITIALFIELDS": `{"service": "greeter"}`,
			},
		},
		"overrides pointer bool": {
			initialRuntime: &ServerRuntime{
				TransportProtocol:    TransportProtocolStreamableHttp,
				StreamableHTTPConfig: &StreamableHTTPConfig{Port: 8080},
			},
			expectedRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStreamableHttp,
				StreamableHTTPConfig: &StreamableHTTPConfig{
					Port:      8080,
					Stateless: ptr.To(false),
				},
			},
			env: map[string]string{
				"GREETER_STREAMABLEHTTPCONFIG_STATELESS": "false",
			},
		},
		"surfaces error on invalid env var type": {
			initialRuntime: &ServerRuntime{
				TransportProtocol: TransportProtocolStreamableHttp,
				StreamableHTTPConfig: &StreamableHTTPConfig{
					Port: 8080,
				},
			},
			expectErr: true,
			env: map[string]string{
				"GREETER_STREAMABLEHTTPCONFIG_PORT": "eighty",
			},
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			err := NewEnvRuntimeOverrider().ApplyOverrides(tc.initialRuntime)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedRuntime, tc.initialRuntime)
		})
	}
}

func TestEnvOverridesNilRuntime(t *testing.T) {
	assert.Error(t, NewEnvRuntimeOverrider().ApplyOverrides(nil))
}
