package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"manimrunner/internal/adapters/storage/localfs"
	s3adapter "manimrunner/internal/adapters/storage/s3"
	"manimrunner/internal/adapters/storage/supabase"
	appconfig "manimrunner/internal/config"
)

// NewProvider builds the storage provider selected by configuration.
func NewProvider(ctx context.Context, cfg appconfig.Config) (Provider, error) {
	switch cfg.StorageProvider {
	case "supabase":
		return supabase.New(cfg.SupabaseURL, cfg.SupabaseAPIKey, cfg.SupabaseBucket), nil

	case "s3":
		return newS3Provider(ctx, cfg)

	case "localfs":
		return localfs.New(cfg.LocalRoot, cfg.LocalBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.StorageProvider)
	}
}

func newS3Provider(ctx context.Context, cfg appconfig.Config) (Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithBaseEndpoint(cfg.S3Endpoint),
		awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.S3AccessKey,
				SecretAccessKey: cfg.S3SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) { o.UsePathStyle = true })
	return s3adapter.New(client, cfg.S3Bucket, cfg.S3Endpoint), nil
}
