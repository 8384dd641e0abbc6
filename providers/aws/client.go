package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
)

// Client is the AWS provider client wrapping the engine, endpoint runtime
// and object store
type Client struct {
	sagemakerClient *sagemaker.Client
	runtimeClient   *sagemakerruntime.Client
	s3Client        *s3.Client

	pipelineName  string
	assetBucket   string
	keyPrefix     string
	instanceType  string
	instanceCount int
}

// Options carries the deployment-specific settings for the client
type Options struct {
	PipelineName          string
	AssetBucket           string
	AssetKeyPrefix        string
	EndpointInstanceType  string
	EndpointInstanceCount int
}

// NewClient creates a new AWS client
func NewClient(ctx context.Context, region string, opts Options) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &Client{
		sagemakerClient: sagemaker.NewFromConfig(cfg),
		runtimeClient:   sagemakerruntime.NewFromConfig(cfg),
		s3Client:        s3.NewFromConfig(cfg),
		pipelineName:    opts.PipelineName,
		assetBucket:     opts.AssetBucket,
		keyPrefix:       opts.AssetKeyPrefix,
		instanceType:    opts.EndpointInstanceType,
		instanceCount:   opts.EndpointInstanceCount,
	}, nil
}
