package mcp

// ToolDefinition names and describes one MCP tool.
// Input schemas are inferred from the typed inputs in server.go.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetToolDefinitions returns all available MCP tool definitions
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		// Log tools
		{
			Name:        ToolReadLogs,
			Description: "Read the tail of the mirror's diagnostic log. Each line is an ISO-8601 local timestamp followed by the message.",
		},
		{
			Name:        ToolAppendLog,
			Description: "Append a marker line to the diagnostic log, e.g. before reproducing an issue.",
		},
		{
			Name:        ToolClearLogs,
			Description: "Empty the primary diagnostic log. The rotated backup is left untouched.",
		},
		// Preference tools
		{
			Name:        ToolListPrefs,
			Description: "List every preference with its effective value (defaults applied).",
		},
		{
			Name:        ToolGetPref,
			Description: "Read one preference: endpoint, payload_template, reception, sms_enabled, allowed_packages or service_running.",
		},
		{
			Name:        ToolSetPref,
			Description: "Write one preference. sms_enabled and service_running take a boolean, allowed_packages a list of package names, the rest a string.",
		},
		// Relay tools
		{
			Name:        ToolGetStatus,
			Description: "Show whether the relay is running, whether a live consumer is attached, how many events are pending and whether the SMS observer is registered.",
		},
	}
}
