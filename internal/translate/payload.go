package translate

import (
	"encoding/json"
	"fmt"

	"bedrockproxy/internal/streamerr"
	"bedrockproxy/internal/upstream"
	"bedrockproxy/pkg/types"
)

// AnthropicVersion is the fixed protocol version sent with Claude requests.
const AnthropicVersion = "bedrock-2023-05-31"

const jsonContentType = "application/json"

// Payload is a family-specific request body bound for one model.
type Payload struct {
	upstream.Request
	Family Family
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
	Temperature      float64         `json:"temperature"`
}

// llamaRequest sends the prompt raw, without the instruct chat template.
type llamaRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
}

type textGenerationConfig struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
}

type genericRequest struct {
	InputText            string               `json:"inputText"`
	TextGenerationConfig textGenerationConfig `json:"textGenerationConfig"`
}

// Build resolves the model id against defaultModel, classifies it and
// serializes the matching request body. max_tokens and temperature are passed through unchecked;
// the upstream service rejects values it does not accept.
func Build(req types.GenerationRequest, defaultModel string) (Payload, error) {
	modelID := ResolveModelID(req.ModelID, defaultModel)
	family := Classify(modelID)

	var body any
	switch family {
	case FamilyClaude:
		body = claudeRequest{
			AnthropicVersion: AnthropicVersion,
			MaxTokens:        req.MaxTokens,
			Messages:         []claudeMessage{{Role: "user", Content: req.Prompt}},
			Temperature:      req.Temperature,
		}
	case FamilyLlama:
		body = llamaRequest{
			Prompt:      req.Prompt,
			MaxGenLen:   req.MaxTokens,
			Temperature: req.Temperature,
		}
	default:
		body = genericRequest{
			InputText: req.Prompt,
			TextGenerationConfig: textGenerationConfig{
				MaxTokenCount: req.MaxTokens,
				Temperature:   req.Temperature,
			},
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Payload{}, streamerr.Request(fmt.Errorf("encode %s request: %w", family, err))
	}
	return Payload{
		Request: upstream.Request{
			ModelID:     modelID,
			Body:        b,
			ContentType: jsonContentType,
			Accept:      jsonContentType,
		},
		Family: family,
	}, nil
}
