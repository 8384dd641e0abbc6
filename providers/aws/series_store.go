package aws

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetSeriesCSV reads the raw time-series CSV for an asset ticker from the
// asset bucket
func (c *Client) GetSeriesCSV(ctx context.Context, ticker string) ([]byte, error) {
	key := fmt.Sprintf("%s/%s.csv", c.keyPrefix, ticker)

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.assetBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
