package mcp

import (
	"fmt"
	"strings"
)

// Tool names
const (
	ToolReadLogs   = "mirror_read_logs"
	ToolAppendLog  = "mirror_append_log"
	ToolClearLogs  = "mirror_clear_logs"
	ToolListPrefs  = "mirror_list_prefs"
	ToolGetPref    = "mirror_get_pref"
	ToolSetPref    = "mirror_set_pref"
	ToolGetStatus  = "mirror_status"
	defaultLogTail = 200
)

// Handler handles MCP tool calls using the HTTP client
type Handler struct {
	client *Client
}

// NewHandler creates a new MCP handler
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// HandleToolCall handles a tool call and returns the result
func (h *Handler) HandleToolCall(name string, args map[string]interface{}) (interface{}, error) {
	switch name {
	case ToolReadLogs:
		return h.handleReadLogs(args)
	case ToolAppendLog:
		return h.handleAppendLog(args)
	case ToolClearLogs:
		return h.handleClearLogs(args)
	case ToolListPrefs:
		return h.handleListPrefs(args)
	case ToolGetPref:
		return h.handleGetPref(args)
	case ToolSetPref:
		return h.handleSetPref(args)
	case ToolGetStatus:
		return h.handleGetStatus(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// ============ Log Handlers ============

func (h *Handler) handleReadLogs(args map[string]interface{}) (interface{}, error) {
	content, err := h.client.GetLogs()
	if err != nil {
		return nil, err
	}

	limit := getIntArg(args, "limit", defaultLogTail)
	lines := splitLines(content)
	total := len(lines)
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	return map[string]interface{}{
		"lines": lines,
		"total": total,
	}, nil
}

func (h *Handler) handleAppendLog(args map[string]interface{}) (interface{}, error) {
	line := getStringArg(args, "line", "")
	if line == "" {
		return nil, fmt.Errorf("line is required")
	}

	if err := h.client.AppendLog(line); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

func (h *Handler) handleClearLogs(args map[string]interface{}) (interface{}, error) {
	if err := h.client.ClearLogs(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"message": "Log cleared; the rotated backup is kept",
	}, nil
}

// ============ Preference Handlers ============

func (h *Handler) handleListPrefs(args map[string]interface{}) (interface{}, error) {
	prefs, err := h.client.ListPrefs()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"prefs": prefs}, nil
}

func (h *Handler) handleGetPref(args map[string]interface{}) (interface{}, error) {
	key := getStringArg(args, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	value, err := h.client.GetPref(key)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"key": key, "value": value}, nil
}

func (h *Handler) handleSetPref(args map[string]interface{}) (interface{}, error) {
	key := getStringArg(args, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	value, ok := args["value"]
	if !ok {
		return nil, fmt.Errorf("value is required")
	}

	if err := h.client.SetPref(key, value); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Preference %s updated", key),
	}, nil
}

// ============ Relay Handlers ============

func (h *Handler) handleGetStatus(args map[string]interface{}) (interface{}, error) {
	return h.client.GetStatus()
}

// ============ Helpers ============

func splitLines(content string) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return []string{}
	}
	return strings.Split(content, "\n")
}

func getStringArg(args map[string]interface{}, key, defaultValue string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

func getIntArg(args map[string]interface{}, key string, defaultValue int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	if v, ok := args[key].(int); ok {
		return v
	}
	return defaultValue
}
