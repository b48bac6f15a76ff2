package upstream

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultRegion is the Bedrock region used when none is configured.
const DefaultRegion = "ca-central-1"

// Options configures the process-wide Bedrock Runtime client.
type Options struct {
	Region string
	// EndpointURL overrides the service endpoint, e.g. for a local stub.
	EndpointURL string
}

// NewBedrock builds a Client backed by a Bedrock Runtime client using the
// default AWS credential chain. Call once at startup and share the result.
func NewBedrock(ctx context.Context, opts Options) (*Client, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	api := bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
		}
	})
	return New(api), nil
}
