package registry

import (
	"fmt"
	"strings"

	"bedrockproxy/pkg/types"
)

// defaultModels is the catalogue served when configuration lists none.
var defaultModels = []types.Model{
	{ID: "us.anthropic.claude-sonnet-4-5-20250929-v1:0", Name: "Claude 3.5 Sonnet (v2)"},
	{ID: "anthropic.claude-3-sonnet-20240229-v1:0", Name: "Claude 3 Sonnet"},
	{ID: "anthropic.claude-3-haiku-20240307-v1:0", Name: "Claude 3 Haiku"},
	{ID: "meta.llama3-8b-instruct-v1:0", Name: "Llama 3 8B"},
	{ID: "amazon.titan-text-express-v1", Name: "Titan Text Express"},
}

// Default returns a copy of the built-in catalogue.
func Default() []types.Model { return append([]types.Model(nil), defaultModels...) }

// FromConfig builds the catalogue from configured entries, keeping their
// order. An empty list yields Default. Ids are trimmed and must be unique;
// a missing name falls back to the id.
func FromConfig(entries []types.Model) ([]types.Model, error) {
	if len(entries) == 0 {
		return Default(), nil
	}
	seen := make(map[string]struct{}, len(entries))
	models := make([]types.Model, 0, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("models[%d]: empty id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("models[%d]: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = id
		}
		models = append(models, types.Model{ID: id, Name: name})
	}
	return models, nil
}
