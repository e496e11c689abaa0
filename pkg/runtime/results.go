package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/genmcp/safe-greeter/pkg/greeter"
)

// McpTextError builds a tool result that reports an error to the client as text.
func McpTextError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

// McpEnvelope carries res as structured content ({"message"} or {"error"})
// and mirrors it as a JSON text block for clients that ignore structured
// content. A whitelist rejection is a normal result, so IsError stays false.
func McpEnvelope(res greeter.Result) *mcp.CallToolResult {
	envelope := res.Envelope()

	text, err := json.Marshal(envelope)
	if err != nil {
		// Envelope only holds strings
		text = []byte(res.String())
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
		StructuredContent: envelope,
	}
}
