package logging

import (
	"context"
	"fmt"
	"maps"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap/zapcore"
)

var zapToMCP = map[zapcore.Level]mcp.LoggingLevel{
	zapcore.DebugLevel:  "debug",
	zapcore.InfoLevel:   "info",
	zapcore.WarnLevel:   "warning",
	zapcore.ErrorLevel:  "error",
	zapcore.DPanicLevel: "critical",
	zapcore.PanicLevel:  "alert",
	zapcore.FatalLevel:  "emergency",
}

// MCPLevel returns the MCP logging level for a zap level.
func MCPLevel(level zapcore.Level) mcp.LoggingLevel {
	if l, ok := zapToMCP[level]; ok {
		return l
	}
	return "info"
}

// sessionLogger is the subset of *mcp.ServerSession used to forward entries.
type sessionLogger interface {
	Log(ctx context.Context, params *mcp.LoggingMessageParams) error
}

type mcpCore struct {
	ss     sessionLogger
	ctx    context.Context
	fields map[string]any
}

// NewMcpCore returns a zapcore.Core that forwards every entry to the client
// connected on ss. The session decides whether to transmit it based on the
// level the client asked for.
func NewMcpCore(ctx context.Context, ss *mcp.ServerSession) (zapcore.Core, error) {
	if ss == nil {
		return nil, fmt.Errorf("ServerSession cannot be nil")
	}
	return newMcpCore(ctx, ss)
}

func newMcpCore(ctx context.Context, ss sessionLogger) (zapcore.Core, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	return &mcpCore{
		ss:     ss,
		ctx:    ctx,
		fields: map[string]any{},
	}, nil
}

func (m *mcpCore) Enabled(zapcore.Level) bool {
	return true
}

func (m *mcpCore) With(fields []zapcore.Field) zapcore.Core {
	return &mcpCore{
		ss:     m.ss,
		ctx:    m.ctx,
		fields: encodeFields(m.fields, fields),
	}
}

func (m *mcpCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(ent, m)
}

func (m *mcpCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	data := encodeFields(m.fields, fields)
	data["ts"] = ent.Time
	data["msg"] = ent.Message
	if ent.Caller.Defined {
		data["caller"] = ent.Caller.String()
	}

	return m.ss.Log(m.ctx, &mcp.LoggingMessageParams{
		Data:   data,
		Level:  MCPLevel(ent.Level),
		Logger: ent.LoggerName,
	})
}

func (m *mcpCore) Sync() error {
	return nil
}

// encodeFields returns a new map holding base plus fields. base is not modified.
func encodeFields(base map[string]any, fields []zapcore.Field) map[string]any {
	enc := zapcore.NewMapObjectEncoder()
	maps.Copy(enc.Fields, base)
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}
