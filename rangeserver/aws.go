package rangeserver

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const awsConfigTimeout = 10 * time.Second

// s3Location is what an s3:// bucket URL says about the client to build.
type s3Location struct {
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// parseS3URL reads the bucket name and the region, endpoint and use_path_style query parameters that the gocloud
// s3blob URL opener also understands.
func parseS3URL(u *url.URL) (loc s3Location, err error) {
	if u.Host == "" {
		return loc, errors.Newf("s3 bucket URL %q has no bucket name", u.String())
	}

	q := u.Query()
	loc = s3Location{Bucket: u.Host, Region: q.Get("region"), Endpoint: q.Get("endpoint")}
	if v := q.Get("use_path_style"); v != "" {
		if loc.UsePathStyle, err = strconv.ParseBool(v); err != nil {
			return loc, errors.Wrapf(err, "use_path_style in %q", u.String())
		}
	}
	return loc, nil
}

// NewAWSConfig loads the default AWS SDK v2 configuration for region, instrumented with OpenTelemetry so every
// S3 call shows up as a span.
func NewAWSConfig(ctx context.Context, region string, tp trace.TracerProvider, prop propagation.TextMapPropagator) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, awsConfigTimeout)
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, errors.Wrap(err, "load aws config")
	}

	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(tp),
		otelaws.WithTextMapPropagator(prop),
	)
	return cfg, nil
}

// newS3Client builds the client for loc from cfg.
func newS3Client(cfg aws.Config, loc s3Location) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if loc.Endpoint != "" {
			o.BaseEndpoint = aws.String(loc.Endpoint)
		}
		o.UsePathStyle = loc.UsePathStyle
	})
}
