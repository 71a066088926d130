package rangeserver

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment holds the configuration of the server, read from environment variables.
type Environment struct {
	Port               int           `env:"SBR_PORT" envDefault:"8080"`
	ServiceName        string        `env:"SBR_SERVICE_NAME,required"`
	BucketURL          string        `env:"SBR_BUCKET_URL,required"`
	BucketPrefix       string        `env:"SBR_BUCKET_PREFIX"`
	ReadinessCheckPath string        `env:"SBR_READINESS_CHECK_PATH" envDefault:"/healthz"`
	LogLevel           zapcore.Level `env:"SBR_LOG_LEVEL" envDefault:"info"`
	OtelExporter       string        `env:"SBR_OTEL_EXPORTER" envDefault:"none"`
	// MaxBytesPerSecond caps the throughput of every single response. Zero disables the cap.
	MaxBytesPerSecond int `env:"SBR_MAX_BYTES_PER_SECOND"`
	// MultipartBoundary fixes the multipart/byteranges boundary. A random one is used per response when empty.
	MultipartBoundary string `env:"SBR_MULTIPART_BOUNDARY"`
}

// ParseEnv parses the environment variables into an [Environment].
func ParseEnv() (e Environment, err error) {
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "failed to parse environment")
	}
	if e.MaxBytesPerSecond < 0 {
		return e, errors.Newf("SBR_MAX_BYTES_PER_SECOND must not be negative, got: %d", e.MaxBytesPerSecond)
	}
	return e, nil
}
