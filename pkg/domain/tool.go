package domain

// ToolCall represents a request from an agent to run one tool.
// Compatible with OpenAI/MCP tool call shapes.
type ToolCall struct {
	ID   string         `json:"id,omitempty" yaml:"id" mapstructure:"id"`
	Name string         `json:"name" yaml:"name" mapstructure:"name"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

// ToolResult represents the outcome of a tool call.
// Caller-input failures are reported with IsError and a verbatim Error
// message rather than as transport errors.
type ToolResult struct {
	ID      string `json:"id,omitempty"` // Must match the ToolCall.ID
	Result  any    `json:"result,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Tool defines metadata about a tool exposed by the server.
// Parameters is a JSON Schema object describing the arguments.
type Tool struct {
	Name        string         `json:"name" yaml:"name" mapstructure:"name"`
	Description string         `json:"description" yaml:"description" mapstructure:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}
