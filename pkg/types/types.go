// Package types holds the wire types shared by the HTTP surface and the
// streaming core.
package types

// Request defaults applied before the JSON body is decoded, so fields absent
// from the body keep these values.
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// NewGenerationRequest returns a request pre-populated with the defaults.
func NewGenerationRequest() GenerationRequest {
	return GenerationRequest{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}
