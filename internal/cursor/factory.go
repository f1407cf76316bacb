package cursor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"basegraph.app/dropbox2slack/core/config"
	"basegraph.app/dropbox2slack/core/db"
)

// Open connects the configured backend. The returned close func releases
// any connections and is never nil.
func Open(ctx context.Context, cfg config.CursorConfig) (Store, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.CursorBackendMemory, "":
		slog.WarnContext(ctx, "using in-memory cursor store; cursor is lost on restart")
		return NewMemoryStore(), noop, nil

	case config.CursorBackendPostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to postgres: %w", err)
		}
		store := NewPostgresStore(database.Pool(), cfg.TableName)
		if err := store.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, noop, err
		}
		return store, database.Close, nil

	case config.CursorBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connecting to redis: %w", err)
		}
		return NewRedisStore(client, cfg.TableName), func() { _ = client.Close() }, nil

	case config.CursorBackendDynamoDB:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.AWSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			}
		})
		return NewDynamoDBStore(client, cfg.TableName), noop, nil

	case config.CursorBackendS3:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
				o.UsePathStyle = true
			}
		})
		return NewS3Store(client, cfg.TableName), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown cursor backend: %s", cfg.Backend)
	}
}

func loadAWSConfig(ctx context.Context, cfg config.CursorConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
