package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
)

// CreateEndpointConfig creates an endpoint configuration for the model and
// returns its ARN
func (c *Client) CreateEndpointConfig(ctx context.Context, configName, modelName string) (string, error) {
	out, err := c.sagemakerClient.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(configName),
		ProductionVariants: []types.ProductionVariant{
			{
				InitialInstanceCount: aws.Int32(int32(c.instanceCount)),
				InstanceType:         types.ProductionVariantInstanceType(c.instanceType),
				ModelName:            aws.String(modelName),
				VariantName:          aws.String("variant-1"),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.EndpointConfigArn), nil
}

// CreateEndpoint creates an endpoint from an existing configuration and
// returns its ARN
func (c *Client) CreateEndpoint(ctx context.Context, endpointName, configName string) (string, error) {
	out, err := c.sagemakerClient.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(endpointName),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.EndpointArn), nil
}

// DeleteEndpoint requests deletion of an endpoint
func (c *Client) DeleteEndpoint(ctx context.Context, endpointName string) error {
	_, err := c.sagemakerClient.DeleteEndpoint(ctx, &sagemaker.DeleteEndpointInput{
		EndpointName: aws.String(endpointName),
	})
	return err
}

// DeleteEndpointConfig requests deletion of an endpoint configuration. The
// endpoint itself must already be deleted.
func (c *Client) DeleteEndpointConfig(ctx context.Context, configName string) error {
	_, err := c.sagemakerClient.DeleteEndpointConfig(ctx, &sagemaker.DeleteEndpointConfigInput{
		EndpointConfigName: aws.String(configName),
	})
	return err
}

// InvokeEndpoint calls the inference endpoint synchronously with a JSON
// payload and returns the raw response body
func (c *Client) InvokeEndpoint(ctx context.Context, endpointName string, payload []byte) ([]byte, error) {
	out, err := c.runtimeClient.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpointName),
		Body:         payload,
		ContentType:  aws.String("application/json"),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
