package types

// GenerationRequest is the body of POST /chat.
type GenerationRequest struct {
	// Prompt text sent to the model as a single user turn.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Optional Bedrock model identifier. Empty selects the server default.
	// The identifier also selects the request/response schema family.
	// example: us.anthropic.claude-sonnet-4-5-20250929-v1:0
	ModelID string `json:"modelId,omitempty" example:"us.anthropic.claude-sonnet-4-5-20250929-v1:0"`
	// Maximum number of tokens to generate. Passed through unvalidated.
	// example: 1000
	MaxTokens int `json:"max_tokens,omitempty" example:"1000"`
	// Sampling temperature. Passed through unvalidated.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
}

// ErrorResponse is a consistent JSON error payload for failures that happen
// before a stream starts.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Bedrock region the upstream client talks to.
	// example: ca-central-1
	Region string `json:"region" example:"ca-central-1"`
	// Model id used when a request omits modelId.
	// example: us.anthropic.claude-sonnet-4-5-20250929-v1:0
	DefaultModel string `json:"default_model" example:"us.anthropic.claude-sonnet-4-5-20250929-v1:0"`
	// Streams currently being relayed.
	// example: 2
	ActiveStreams int64 `json:"active_streams" example:"2"`
	// Streams started since process start.
	// example: 120
	StreamsTotal uint64 `json:"streams_total" example:"120"`
	// Streams that ended with an in-band error.
	// example: 3
	StreamErrorsTotal uint64 `json:"stream_errors_total" example:"3"`
	// Last in-band error observed, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
