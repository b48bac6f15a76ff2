package upstream

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"bedrockproxy/internal/streamerr"
)

// API is the subset of *bedrockruntime.Client used by Client.
type API interface {
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// eventReader is satisfied by *bedrockruntime.InvokeModelWithResponseStreamEventStream.
type eventReader interface {
	Events() <-chan brtypes.ResponseStream
	Close() error
	Err() error
}

type invokeFunc func(ctx context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput) (eventReader, error)

// Client opens response streams. It holds no per-call state and is safe for
// concurrent use; every Open gets its own stream.
type Client struct {
	invoke invokeFunc
}

var errNoStream = errors.New("bedrock returned no response stream")

// New wraps a Bedrock Runtime client.
func New(api API) *Client {
	return &Client{invoke: func(ctx context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput) (eventReader, error) {
		out, err := api.InvokeModelWithResponseStream(ctx, in)
		if err != nil {
			return nil, err
		}
		es := out.GetStream()
		if es == nil {
			return nil, errNoStream
		}
		return es, nil
	}}
}

// Open issues one streaming invocation. Failures to establish the stream are
// returned as upstream connection errors; the caller must Close the stream.
func (c *Client) Open(ctx context.Context, req Request) (*Stream, error) {
	accept := req.Accept
	if accept == "" {
		accept = "application/json"
	}
	ct := req.ContentType
	if ct == "" {
		ct = "application/json"
	}
	r, err := c.invoke(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(req.ModelID),
		Body:        req.Body,
		Accept:      aws.String(accept),
		ContentType: aws.String(ct),
	})
	if err != nil {
		return nil, streamerr.UpstreamConnection(err)
	}
	return &Stream{r: r}, nil
}
