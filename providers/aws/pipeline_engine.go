package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/pipeline"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/google/uuid"
)

// StartPipelineExecution starts the training pipeline with the template's
// hyper-parameters and returns the execution ARN
func (c *Client) StartPipelineExecution(ctx context.Context, params pipeline.StartParams) (string, error) {
	hp := params.Meta.HyperParams
	packageGroup := fmt.Sprintf("asset-prediction-%d", time.Now().Unix())

	out, err := c.sagemakerClient.StartPipelineExecution(ctx, &sagemaker.StartPipelineExecutionInput{
		PipelineName:       aws.String(c.pipelineName),
		ClientRequestToken: aws.String(uuid.New().String()),
		PipelineParameters: []types.Parameter{
			{Name: aws.String("ExecutionId"), Value: aws.String(params.ExecutionID)},
			{Name: aws.String("AssetsData"), Value: aws.String(params.AssetsDataURL)},
			{Name: aws.String("HyperParamEpochs"), Value: aws.String(strconv.Itoa(hp.Epochs))},
			{Name: aws.String("HyperParamEarlyStoppingPatience"), Value: aws.String(strconv.Itoa(hp.EarlyStoppingPatience))},
			{Name: aws.String("HyperParamMiniBatchSize"), Value: aws.String(strconv.Itoa(hp.MiniBatchSize))},
			{Name: aws.String("HyperParamLearningRate"), Value: aws.String(strconv.FormatFloat(hp.LearningRate, 'g', -1, 64))},
			{Name: aws.String("HyperParamContextLength"), Value: aws.String(strconv.Itoa(params.Meta.ContextLength))},
			{Name: aws.String("HyperParamPredictionLength"), Value: aws.String(strconv.Itoa(params.Meta.PredictionLength))},
			{Name: aws.String("ModelPackageGroupName"), Value: aws.String(packageGroup)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.PipelineExecutionArn), nil
}

// ModelCorrelationTag reads the pipeline-execution tag directly off a model
// artifact. An empty result means the tag has not propagated yet.
func (c *Client) ModelCorrelationTag(ctx context.Context, modelArn string) (string, error) {
	out, err := c.sagemakerClient.ListTags(ctx, &sagemaker.ListTagsInput{
		ResourceArn: aws.String(modelArn),
	})
	if err != nil {
		return "", err
	}

	for _, tag := range out.Tags {
		if aws.ToString(tag.Key) == models.PipelineExecutionTagKey {
			return aws.ToString(tag.Value), nil
		}
	}
	return "", nil
}
