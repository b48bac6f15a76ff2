// Package upstream opens streaming invocations against Bedrock Runtime and
// exposes each one as a lazy, forward-only sequence of raw frames. It never
// interprets frame contents.
package upstream

import (
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// Frame is one event of a response stream.
type Frame struct {
	// Chunk is the payload bytes of a chunk event.
	Chunk []byte
	// HasChunk is false for events that carry no payload part.
	HasChunk bool
	// Kind names the event variant, for logging.
	Kind string
}

// ChunkFrame builds a frame carrying payload bytes.
func ChunkFrame(b []byte) Frame { return Frame{Chunk: b, HasChunk: true, Kind: "chunk"} }

func frameOf(ev brtypes.ResponseStream) Frame {
	switch v := ev.(type) {
	case *brtypes.ResponseStreamMemberChunk:
		return ChunkFrame(v.Value.Bytes)
	case *brtypes.UnknownUnionMember:
		return Frame{Kind: v.Tag}
	default:
		return Frame{Kind: "unknown"}
	}
}

// Request is a serialized invocation ready to be sent upstream.
type Request struct {
	ModelID     string
	Body        []byte
	ContentType string
	Accept      string
}
