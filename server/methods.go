package server

// ProtocolVersion is the MCP protocol revision the engine speaks.
const ProtocolVersion = "2024-11-05"

// MCP method names.
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodPing          = "ping"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodPromptsList   = "prompts/list"
	MethodPromptsGet    = "prompts/get"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)
