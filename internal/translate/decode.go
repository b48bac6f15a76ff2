package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"bedrockproxy/internal/streamerr"
	"bedrockproxy/internal/upstream"
)

// Usage is the invocation summary Bedrock attaches to the last chunk of a
// stream.
type Usage struct {
	InputTokens       int `json:"inputTokenCount"`
	OutputTokens      int `json:"outputTokenCount"`
	InvocationLatency int `json:"invocationLatency"`
	FirstByteLatency  int `json:"firstByteLatency"`
}

// Chunk is what one frame contributes. An empty Text means no fragment.
type Chunk struct {
	Text  string
	Usage *Usage
}

type metricsDoc struct {
	Metrics *Usage `json:"amazon-bedrock-invocationMetrics"`
}

type claudeChunk struct {
	metricsDoc
	Type  string `json:"type"`
	Delta *struct {
		Text string `json:"text"`
	} `json:"delta"`
}

type llamaChunk struct {
	metricsDoc
	Generation string `json:"generation"`
}

type genericChunk struct {
	metricsDoc
	OutputText string `json:"outputText"`
}

const claudeDeltaType = "content_block_delta"

var (
	errNotObject   = errors.New("chunk payload is not a JSON object")
	errInvalidUTF8 = errors.New("chunk payload is not valid UTF-8")
)

// Decode extracts at most one text fragment from fr. Frames without a payload
// and documents lacking the family's text field yield an empty Chunk. A
// payload that is not a UTF-8 JSON object is a malformed frame.
func Decode(f Family, fr upstream.Frame) (Chunk, error) {
	if !fr.HasChunk {
		return Chunk{}, nil
	}
	b := bytes.TrimSpace(fr.Chunk)
	if !utf8.Valid(b) {
		return Chunk{}, streamerr.MalformedFrame(errInvalidUTF8)
	}
	if len(b) > 0 && b[0] != '{' {
		return Chunk{}, streamerr.MalformedFrame(errNotObject)
	}
	switch f {
	case FamilyClaude:
		var doc claudeChunk
		if err := json.Unmarshal(b, &doc); err != nil {
			return Chunk{}, streamerr.MalformedFrame(err)
		}
		c := Chunk{Usage: doc.Metrics}
		if doc.Type == claudeDeltaType && doc.Delta != nil {
			c.Text = doc.Delta.Text
		}
		return c, nil
	case FamilyLlama:
		var doc llamaChunk
		if err := json.Unmarshal(b, &doc); err != nil {
			return Chunk{}, streamerr.MalformedFrame(err)
		}
		return Chunk{Text: doc.Generation, Usage: doc.Metrics}, nil
	default:
		var doc genericChunk
		if err := json.Unmarshal(b, &doc); err != nil {
			return Chunk{}, streamerr.MalformedFrame(err)
		}
		return Chunk{Text: doc.OutputText, Usage: doc.Metrics}, nil
	}
}
