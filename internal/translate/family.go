// Package translate maps a generation request onto a model family's Bedrock
// request schema and decodes that family's streamed chunks back into text.
package translate

import "strings"

// Family identifies the request/response schema a model id uses.
type Family int

const (
	FamilyGeneric Family = iota
	FamilyClaude
	FamilyLlama
)

func (f Family) String() string {
	switch f {
	case FamilyClaude:
		return "claude"
	case FamilyLlama:
		return "llama"
	default:
		return "generic"
	}
}

// DefaultModelID is substituted when a request names no model and no
// other default is configured.
const DefaultModelID = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"

// familyRules is evaluated in order and the first match wins, so an id that
// contains both "claude" and "llama" is a Claude id.
var familyRules = []struct {
	substr string
	family Family
}{
	{"claude", FamilyClaude},
	{"llama", FamilyLlama},
}

// Classify returns the family of modelID. Ids matching no rule are generic.
func Classify(modelID string) Family {
	for _, r := range familyRules {
		if strings.Contains(modelID, r.substr) {
			return r.family
		}
	}
	return FamilyGeneric
}

// ResolveModelID returns modelID, or fallback when it is empty. An empty
// fallback means DefaultModelID.
func ResolveModelID(modelID, fallback string) string {
	if modelID != "" {
		return modelID
	}
	if fallback != "" {
		return fallback
	}
	return DefaultModelID
}
