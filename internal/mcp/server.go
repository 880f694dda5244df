package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadLogsInput is the input for the log tail tool
type ReadLogsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of trailing lines to return (default 200)"`
}

// AppendLogInput is the input for the log append tool
type AppendLogInput struct {
	Line string `json:"line" jsonschema:"The text to append"`
}

// PrefKeyInput names one preference
type PrefKeyInput struct {
	Key string `json:"key" jsonschema:"The preference key"`
}

// SetPrefInput is the input for the preference write tool
type SetPrefInput struct {
	Key   string      `json:"key" jsonschema:"The preference key"`
	Value interface{} `json:"value" jsonschema:"The new value"`
}

// EmptyInput is used by tools that take no arguments
type EmptyInput struct{}

// Server exposes the handler's tools over the MCP protocol
type Server struct {
	server  *sdk.Server
	handler *Handler
}

// NewServer creates an MCP server backed by handler
func NewServer(handler *Handler, version string) *Server {
	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "msg-mirror-tools",
			Version: version,
		}, nil),
		handler: handler,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	desc := make(map[string]string)
	for _, def := range GetToolDefinitions() {
		desc[def.Name] = def.Description
	}

	addTool(s, ToolReadLogs, desc, func(in ReadLogsInput) map[string]interface{} {
		if in.Limit == 0 {
			return nil
		}
		return map[string]interface{}{"limit": in.Limit}
	})
	addTool(s, ToolAppendLog, desc, func(in AppendLogInput) map[string]interface{} {
		return map[string]interface{}{"line": in.Line}
	})
	addTool(s, ToolClearLogs, desc, noArgs)
	addTool(s, ToolListPrefs, desc, noArgs)
	addTool(s, ToolGetPref, desc, func(in PrefKeyInput) map[string]interface{} {
		return map[string]interface{}{"key": in.Key}
	})
	addTool(s, ToolSetPref, desc, func(in SetPrefInput) map[string]interface{} {
		return map[string]interface{}{"key": in.Key, "value": in.Value}
	})
	addTool(s, ToolGetStatus, desc, noArgs)
}

// addTool registers name with a typed input that is flattened into
// HandleToolCall arguments
func addTool[In any](s *Server, name string, desc map[string]string, toArgs func(In) map[string]interface{}) {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        name,
		Description: desc[name],
	}, func(ctx context.Context, req *sdk.CallToolRequest, in In) (*sdk.CallToolResult, any, error) {
		result, err := s.handler.HandleToolCall(name, toArgs(in))
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}

func noArgs(EmptyInput) map[string]interface{} { return nil }

// Run serves the tools over stdio until ctx is done
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdk.StdioTransport{})
}
