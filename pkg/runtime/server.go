package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"k8s.io/utils/ptr"

	"github.com/genmcp/safe-greeter/pkg/audit"
	serverconfig "github.com/genmcp/safe-greeter/pkg/config/server"
	"github.com/genmcp/safe-greeter/pkg/gateway"
	"github.com/genmcp/safe-greeter/pkg/greeter"
	"github.com/genmcp/safe-greeter/pkg/health"
	"github.com/genmcp/safe-greeter/pkg/observability/logging"
)

// Recorder stores the outcome of a tool invocation.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Server serves a Gateway over MCP.
type Server struct {
	config   *serverconfig.MCPServerConfig
	gateway  *gateway.Gateway
	recorder Recorder
	health   health.Checker
	mcp      *mcp.Server

	closers []io.Closer
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder sends every invocation outcome to r instead of the audit
// database named in the runtime config.
func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// NewServer builds an MCP server exposing every tool registered in gw. When
// the runtime config enables auditing and no Recorder was given, the audit
// database is opened here and closed by Close.
func NewServer(ctx context.Context, cfg *serverconfig.MCPServerConfig, gw *gateway.Gateway, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}

	cfg.ApplyDefaults()

	s := &Server{
		config:  cfg,
		gateway: gw,
		health:  health.NewChecker(),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := cfg.Runtime.GetBaseLogger()

	if s.recorder == nil && cfg.Runtime.AuditConfig != nil {
		path := cfg.Runtime.AuditConfig.DatabasePath
		store, err := audit.Open(ctx, path)
		if err != nil {
			logger.Error("Failed to open audit database", zap.String("database_path", path), zap.Error(err))
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		logger.Info("Recording tool invocations", zap.String("database_path", path))
		s.recorder = store
		s.closers = append(s.closers, store)
		s.health.AddReadinessCheck("audit", store.Ping)
	}

	s.mcp = s.makeMCPServer()
	return s, nil
}

// MCPServer returns the underlying go-sdk server, e.g. to connect it to an
// in-memory transport.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Health returns the checker behind the HTTP probe endpoints.
func (s *Server) Health() health.Checker {
	return s.health
}

// Close releases resources opened by NewServer.
func (s *Server) Close() error {
	var err error
	for _, c := range s.closers {
		err = errors.Join(err, c.Close())
	}
	s.closers = nil
	return err
}

func (s *Server) makeMCPServer() *mcp.Server {
	logger := s.config.Runtime.GetBaseLogger()
	tools := s.gateway.Tools()

	logger.Debug("Building MCP server",
		zap.String("server_name", s.config.Name),
		zap.String("server_version", s.config.Version),
		zap.Int("num_tools", len(tools)))

	opts := &mcp.ServerOptions{
		HasTools: len(tools) > 0,
	}
	if s.config.Instructions != "" {
		opts.Instructions = s.config.Instructions
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    s.config.Name,
		Version: s.config.Version,
	}, opts)

	// the logging middleware must run first so later handlers find its loggers
	server.AddReceivingMiddleware(
		logging.WithLoggingMiddleware(logger, s.config.Runtime.LoggingConfig.MCPLogsEnabled()),
		s.unknownToolMiddleware(),
	)

	for _, t := range tools {
		server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.InputSchema,
			Annotations: &mcp.ToolAnnotations{
				Title:          t.Title,
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  ptr.To(false),
			},
		}, s.createToolHandler(t.Name))
		logger.Debug("Registered tool", zap.String("tool_name", t.Name))
	}

	return server
}

// createToolHandler adapts one gateway tool to the go-sdk handler signature.
// Internal errors are logged server-side; the client only sees generic text.
func (s *Server) createToolHandler(toolName string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		clientLogger := logging.FromContext(ctx)
		baseLogger := logging.BaseFromContext(ctx)

		var rawArgs json.RawMessage
		if req != nil && req.Params != nil {
			rawArgs = req.Params.Arguments
		}

		res, err := s.invoke(ctx, toolName, rawArgs)
		outcome := gateway.Classify(res, err)
		s.record(ctx, toolName, outcome, rawArgs)

		switch outcome {
		case gateway.OutcomeSuccess:
			clientLogger.Info("Tool invocation completed successfully")
			return McpEnvelope(res), nil
		case gateway.OutcomeRejected:
			baseLogger.Info("Tool input rejected by whitelist", zap.Int("input_bytes", len(rawArgs)))
			return McpEnvelope(res), nil
		case gateway.OutcomeBadArguments:
			baseLogger.Warn("Tool called with invalid arguments", zap.Error(err))
			return McpTextError("invalid arguments for tool %s", toolName), nil
		default:
			baseLogger.Error("Tool invocation failed", zap.String("outcome", string(outcome)), zap.Error(err))
			clientLogger.Error("Tool invocation failed", zap.String("error", "invocation error"))
			return McpTextError("tool invocation failed"), nil
		}
	}
}

func (s *Server) invoke(ctx context.Context, toolName string, rawArgs json.RawMessage) (greeter.Result, error) {
	var args map[string]any
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return greeter.Result{}, fmt.Errorf("%w: tool %s: arguments must be a JSON object: %w", gateway.ErrBadArguments, toolName, err)
		}
	}

	return s.gateway.Invoke(ctx, toolName, args)
}

// unknownToolMiddleware records calls to tools missing from the gateway. The
// go-sdk server answers them with a protocol error.
func (s *Server) unknownToolMiddleware() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			call, ok := req.(*mcp.CallToolRequest)
			if !ok || call.Params == nil {
				return next(ctx, method, req)
			}

			if _, known := s.gateway.Lookup(call.Params.Name); !known {
				logging.BaseFromContext(ctx).Info("Call to unknown tool", zap.String("requested_tool", call.Params.Name))
				s.record(ctx, call.Params.Name, gateway.OutcomeUnknownTool, call.Params.Arguments)
			}

			return next(ctx, method, req)
		}
	}
}

func (s *Server) record(ctx context.Context, toolName string, outcome gateway.Outcome, rawArgs json.RawMessage) {
	if s.recorder == nil {
		return
	}

	err := s.recorder.Record(ctx, audit.Entry{
		Tool:    toolName,
		Outcome: string(outcome),
		Input:   string(rawArgs),
	})
	if err != nil {
		logging.BaseFromContext(ctx).Warn("Failed to record tool invocation", zap.Error(err))
	}
}

// HTTPHandler returns the streamable HTTP handler mounted under the
// configured base path, plus the health endpoints when enabled.
func (s *Server) HTTPHandler() http.Handler {
	logger := s.config.Runtime.GetBaseLogger()
	httpConfig := s.httpConfig()

	mux := http.NewServeMux()
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{
		Stateless: httpConfig.IsStateless(),
	})
	mux.Handle(httpConfig.BasePath, handler)
	logger.Debug("Registered MCP handler", zap.String("path", httpConfig.BasePath))

	if httpConfig.Health.IsEnabled() {
		s.health.Register(mux, httpConfig.Health.LivenessPath, httpConfig.Health.ReadinessPath)
		logger.Debug("Registered health endpoints",
			zap.String("liveness_path", httpConfig.Health.LivenessPath),
			zap.String("readiness_path", httpConfig.Health.ReadinessPath))
	}

	return mux
}

func (s *Server) httpConfig() *serverconfig.StreamableHTTPConfig {
	if s.config.Runtime.StreamableHTTPConfig == nil {
		s.config.Runtime.StreamableHTTPConfig = &serverconfig.StreamableHTTPConfig{}
		s.config.Runtime.StreamableHTTPConfig.ApplyDefaults()
	}
	return s.config.Runtime.StreamableHTTPConfig
}

// Run serves on the configured transport until ctx is cancelled or, for
// stdio, the client closes the stream.
func (s *Server) Run(ctx context.Context) error {
	logger := s.config.Runtime.GetBaseLogger()

	switch strings.ToLower(s.config.Runtime.TransportProtocol) {
	case serverconfig.TransportProtocolStreamableHttp:
		logger.Info("Running server with streamable HTTP transport")
		return s.runStreamableHttpServer(ctx)
	case serverconfig.TransportProtocolStdio:
		logger.Info("Running server with stdio transport")
		return s.runStdioServer(ctx)
	default:
		logger.Error("Invalid transport protocol specified",
			zap.String("transport_protocol", s.config.Runtime.TransportProtocol))
		return fmt.Errorf("tried running invalid transport protocol %q", s.config.Runtime.TransportProtocol)
	}
}

func (s *Server) runStreamableHttpServer(ctx context.Context) error {
	logger := s.config.Runtime.GetBaseLogger()
	httpConfig := s.httpConfig()

	logger.Info("Setting up streamable HTTP server",
		zap.Int("port", httpConfig.Port),
		zap.String("base_path", httpConfig.BasePath),
		zap.Bool("stateless", httpConfig.IsStateless()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", httpConfig.Port),
		Handler: s.HTTPHandler(),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("Failed to listen", zap.String("addr", srv.Addr), zap.Error(err))
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	logger.Info(fmt.Sprintf("Starting MCP server on port %d", httpConfig.Port))

	errCh := make(chan error, 1)
	go func() {
		var err error
		if httpConfig.TLS != nil {
			logger.Info("Starting HTTPS server with TLS",
				zap.String("cert_file", httpConfig.TLS.CertFile),
				zap.String("key_file", httpConfig.TLS.KeyFile))
			err = srv.ServeTLS(ln, httpConfig.TLS.CertFile, httpConfig.TLS.KeyFile)
		} else {
			err = srv.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
			errCh <- err
		}
	}()

	s.health.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal, shutting down HTTP server gracefully")
		s.health.SetReady(false)
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
			return err
		}
		logger.Info("HTTP server shutdown completed")
		return nil
	case err := <-errCh:
		s.health.SetReady(false)
		logger.Error("HTTP server failed", zap.Error(err))
		return err
	}
}

func (s *Server) runStdioServer(ctx context.Context) error {
	logger := s.config.Runtime.GetBaseLogger()
	logger.Info("Starting stdio server",
		zap.String("server_name", s.config.Name),
		zap.String("server_version", s.config.Version))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !isCleanShutdown(err) {
		logger.Error("Stdio server failed", zap.Error(err))
		return err
	}

	logger.Info("Stdio server completed")
	return nil
}

func isCleanShutdown(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}
