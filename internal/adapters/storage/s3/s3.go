// Package s3 implements ports.StorageProvider against any
// S3-compatible object store, using path-style addressing so that
// MinIO-style endpoints work.
package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"manimrunner/internal/ports"
)

type Client struct {
	client   *awss3.Client
	bucket   string
	endpoint string
}

func New(client *awss3.Client, bucket, endpoint string) *Client {
	return &Client{
		client:   client,
		bucket:   bucket,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

func (c *Client) Provider() string { return "s3" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	input := &awss3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(in.ObjectKey),
		Body:   in.Reader,
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("s3 upload failed: %w", err)
	}

	return ports.PutObjectOutput{
		ObjectKey: in.ObjectKey,
		URL:       fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, in.ObjectKey),
		Size:      in.Size,
	}, nil
}
