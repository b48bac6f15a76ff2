package types

// Model is one entry of the GET /models catalogue.
type Model struct {
	// Bedrock model identifier.
	// example: anthropic.claude-3-haiku-20240307-v1:0
	ID string `json:"id" yaml:"id" toml:"id" example:"anthropic.claude-3-haiku-20240307-v1:0"`
	// Human-friendly name.
	// example: Claude 3 Haiku
	Name string `json:"name" yaml:"name" toml:"name" example:"Claude 3 Haiku"`
}
