package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/utils/ptr"

	"github.com/genmcp/safe-greeter/pkg/observability/logging"
)

func TestGetBaseLogger(t *testing.T) {
	tt := map[string]struct {
		runtime      *ServerRuntime
		expectNoop   bool
		enabledLevel zapcore.Level
	}{
		"nil runtime returns noop": {
			runtime:    nil,
			expectNoop: true,
		},
		"no logging config defaults to info console logger": {
			runtime:      &ServerRuntime{TransportProtocol: TransportProtocolStdio},
			enabledLevel: zapcore.InfoLevel,
		},
		"logging config sets the level": {
			runtime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
				LoggingConfig:     &logging.LoggingConfig{Level: "warn"},
			},
			enabledLevel: zapcore.WarnLevel,
		},
		"broken logging config falls back to default": {
			runtime: &ServerRuntime{
				TransportProtocol: TransportProtocolStdio,
				LoggingConfig:     &logging.LoggingConfig{Level: "very-loud"},
			},
			enabledLevel: zapcore.InfoLevel,
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			logger := tc.runtime.GetBaseLogger()
			require.NotNil(t, logger)

			if tc.expectNoop {
				assert.False(t, logger.Core().Enabled(zapcore.FatalLevel))
				return
			}

			assert.True(t, logger.Core().Enabled(tc.enabledLevel))
			assert.False(t, logger.Core().Enabled(tc.enabledLevel-1))
			assert.Same(t, logger, tc.runtime.GetBaseLogger())
		})
	}
}

func TestSetBaseLogger(t *testing.T) {
	runtime := &ServerRuntime{TransportProtocol: TransportProtocolStdio}
	custom := zap.NewExample()

	runtime.SetBaseLogger(custom)
	assert.Same(t, custom, runtime.GetBaseLogger())

	// once built, the logger is fixed
	runtime.SetBaseLogger(zap.NewNop())
	assert.Same(t, custom, runtime.GetBaseLogger())
}

func TestIsStatelessAndIsEnabled(t *testing.T) {
	assert.True(t, (&StreamableHTTPConfig{}).IsStateless())
	assert.False(t, (&StreamableHTTPConfig{Stateless: ptr.To(false)}).IsStateless())

	var noHealth *HealthConfig
	assert.False(t, noHealth.IsEnabled())
	assert.True(t, (&HealthConfig{}).IsEnabled())
	assert.False(t, (&HealthConfig{Enabled: ptr.To(false)}).IsEnabled())
}
