package rangeserver

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw  string
		want s3Location
	}{
		{"s3://media", s3Location{Bucket: "media"}},
		{"s3://media?region=eu-west-1", s3Location{Bucket: "media", Region: "eu-west-1"}},
		{
			"s3://media?region=us-east-1&endpoint=http://localhost:9000&use_path_style=true",
			s3Location{Bucket: "media", Region: "us-east-1", Endpoint: "http://localhost:9000", UsePathStyle: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)

			loc, err := parseS3URL(u)
			require.NoError(t, err)
			require.Equal(t, tt.want, loc)
		})
	}

	t.Run("errors", func(t *testing.T) {
		for _, raw := range []string{"s3:///key", "s3://media?use_path_style=maybe"} {
			u, err := url.Parse(raw)
			require.NoError(t, err)
			_, err = parseS3URL(u)
			require.Error(t, err, raw)
		}
	})
}

func TestNewAWSConfig(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg, err := NewAWSConfig(context.Background(), "eu-west-1", noop.NewTracerProvider(), NewPropagator())
	require.NoError(t, err)
	require.Equal(t, "eu-west-1", cfg.Region)
	require.NotEmpty(t, cfg.APIOptions)

	client := newS3Client(cfg, s3Location{Bucket: "media", Endpoint: "http://localhost:9000", UsePathStyle: true})
	opts := client.Options()
	require.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)
	require.True(t, opts.UsePathStyle)
}

func TestOpenBucket(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	tp, prop := noop.NewTracerProvider(), NewPropagator()

	for _, raw := range []string{"mem://", "s3://media?region=eu-west-1&endpoint=http://localhost:9000"} {
		t.Run(raw, func(t *testing.T) {
			bucket, err := openBucket(context.Background(), raw, tp, prop)
			require.NoError(t, err)
			require.NoError(t, bucket.Close())
		})
	}

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := openBucket(context.Background(), "nope://bucket", tp, prop)
		require.Error(t, err)
	})
}
