// Package s3 fetches game telemetry bundles from an S3 bucket into the
// local logs directory before analysis. Local files remain the default
// path; this is for setups where the scraper uploads its output to
// object storage.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3 client configuration.
type Config struct {
	// Region is the AWS region (e.g., "us-east-1")
	Region string

	// Bucket is the bucket holding the telemetry bundles
	Bucket string

	// Prefix is prepended to every object key
	Prefix string

	// Endpoint overrides the default S3 endpoint (for S3-compatible services)
	Endpoint string

	// UsePathStyle forces path-style addressing (for MinIO, LocalStack)
	UsePathStyle bool

	// Credentials (optional - uses default chain if not provided)
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// DownloadTimeout bounds each object download
	DownloadTimeout time.Duration
}

// DefaultConfig returns sensible defaults for S3 configuration.
func DefaultConfig(bucket, region string) Config {
	return Config{
		Bucket:          bucket,
		Region:          region,
		DownloadTimeout: 5 * time.Minute,
	}
}

// Client downloads telemetry objects.
type Client struct {
	cfg    Config
	client *s3.Client
}

// NewClient creates a new S3 client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket not configured")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Client{
		cfg:    cfg,
		client: s3.NewFromConfig(awsCfg, s3Opts...),
	}, nil
}

// Download copies one object to a local file. The file is written to a
// temp name first and renamed on success so a failed download never
// leaves a truncated log behind.
func (c *Client) Download(ctx context.Context, key, dest string) error {
	if c.cfg.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.DownloadTimeout)
		defer cancel()
	}

	fullKey := key
	if c.cfg.Prefix != "" {
		fullKey = path.Join(c.cfg.Prefix, key)
	}

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("s3: get %s/%s: %w", c.cfg.Bucket, fullKey, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("s3: create %s: %w", filepath.Dir(dest), err)
	}

	tmp := dest + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("s3: create %s: %w", tmp, err)
	}

	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("s3: download %s: %w", fullKey, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// gameObjects are the per-game files the scraper uploads.
var gameObjects = []string{
	"%s_achievement_logs.csv",
	"%s_player_stats.json",
	"%s_common_achievements.json",
}

// FetchGame downloads the achievement log, player stats and common
// achievements for one game into the logs directory. The common
// achievements file is optional in the bucket; its absence is not an
// error when the first two succeed.
func (c *Client) FetchGame(ctx context.Context, logsDir, game string) error {
	for i, pattern := range gameObjects {
		name := fmt.Sprintf(pattern, game)
		if err := c.Download(ctx, name, filepath.Join(logsDir, name)); err != nil {
			// Only the log and the stats are required.
			if i == 2 {
				continue
			}
			return err
		}
	}
	return nil
}
