package rangeserver

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
)

// OpenBucket opens the bucket at SBR_BUCKET_URL, for example "file:///srv/media", "s3://media?region=eu-west-1"
// or "mem://". S3 buckets get a traced AWS SDK client, see [NewAWSConfig]. The bucket is closed when the app stops.
func OpenBucket(
	lc fx.Lifecycle, env Environment, logger *zap.Logger, tp trace.TracerProvider, prop propagation.TextMapPropagator,
) (*blob.Bucket, error) {
	bucket, err := openBucket(context.Background(), env.BucketURL, tp, prop)
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %q", env.BucketURL)
	}
	logger.Info("opened bucket", zap.String("url", env.BucketURL), zap.String("prefix", env.BucketPrefix))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return bucket.Close()
		},
	})

	return bucket, nil
}

func openBucket(ctx context.Context, rawURL string, tp trace.TracerProvider, prop propagation.TextMapPropagator) (*blob.Bucket, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse bucket url")
	}
	if u.Scheme != s3blob.Scheme {
		return blob.OpenBucket(ctx, rawURL)
	}

	loc, err := parseS3URL(u)
	if err != nil {
		return nil, err
	}

	cfg, err := NewAWSConfig(ctx, loc.Region, tp, prop)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucketV2(ctx, newS3Client(cfg, loc), loc.Bucket, nil)
}
