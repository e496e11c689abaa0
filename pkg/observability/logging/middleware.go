package logging

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

type baseCtxKey struct{}

// WithLoggingMiddleware creates an MCP receiving middleware that stores two
// loggers in the request context: the base logger (BaseFromContext) and a
// request logger (FromContext). When forwardToClient is true the request
// logger also sends entries to the client session. A request with no
// ServerSession keeps the base logger as its request logger.
func WithLoggingMiddleware(base *zap.Logger, forwardToClient bool) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			reqBase := base.With(zap.String("method", method))
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				reqBase = reqBase.With(zap.String("tool_name", call.Params.Name))
			}
			ctx = WithBaseLogger(ctx, reqBase)

			if !forwardToClient {
				return next(WithRequestLogger(ctx, reqBase), method, req)
			}

			ss, ok := req.GetSession().(*mcp.ServerSession)
			if !ok || ss == nil {
				return next(WithRequestLogger(ctx, reqBase), method, req)
			}

			requestLogger, err := NewRequestLogger(ctx, reqBase, ss)
			if err != nil {
				reqBase.Warn("failed to initialize request logger", zap.Error(err))
				return next(WithRequestLogger(ctx, reqBase), method, req)
			}

			return next(WithRequestLogger(ctx, requestLogger), method, req)
		}
	}
}

// NewRequestLogger derives a logger from baseLogger that also forwards
// entries to the client connected on ss.
func NewRequestLogger(ctx context.Context, baseLogger *zap.Logger, ss *mcp.ServerSession) (*zap.Logger, error) {
	core, err := NewMcpCore(ctx, ss)
	if err != nil {
		return nil, err
	}
	return tee(baseLogger, core), nil
}

func tee(baseLogger *zap.Logger, extra zapcore.Core) *zap.Logger {
	return baseLogger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, extra)
	}))
}

// WithRequestLogger stores the request logger in ctx.
func WithRequestLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithBaseLogger stores the server-side-only logger in ctx.
func WithBaseLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, baseCtxKey{}, logger)
}

// FromContext returns the request logger stored by WithRequestLogger, or a
// no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	return loggerFromContext(ctx, ctxKey{})
}

// BaseFromContext returns the logger stored by WithBaseLogger, or a no-op
// logger. Entries written to it never reach the client.
func BaseFromContext(ctx context.Context) *zap.Logger {
	return loggerFromContext(ctx, baseCtxKey{})
}

func loggerFromContext(ctx context.Context, key any) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	logger, ok := ctx.Value(key).(*zap.Logger)
	if !ok || logger == nil {
		return zap.NewNop()
	}
	return logger
}
