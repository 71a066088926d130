// Package rangeserver runs an HTTP server that serves the objects of a gocloud.dev/blob bucket with range support.
//
// # Overview
//
// The app wires configuration, structured logging, tracing, the bucket and the HTTP server together with fx:
//
//	rangeserver.NewApp().Run()
//
// Every request path is resolved to an object key by [blobsource.Source] and answered by
// [servebyterange.Handler], so single ranges, multipart ranges, If-Range and If-None-Match all work for any bucket
// driver.
//
// # Environment Configuration
//
//	| Variable                  | Required | Default  | Description                                           |
//	|---------------------------|----------|----------|-------------------------------------------------------|
//	| SBR_SERVICE_NAME          | Yes      | -        | Service name for logging and tracing                  |
//	| SBR_BUCKET_URL            | Yes      | -        | Bucket URL: file:///dir, s3://bucket?region=.., mem:// |
//	| SBR_BUCKET_PREFIX         | No       | -        | Prefix prepended to every object key                  |
//	| SBR_PORT                  | No       | 8080     | Port the HTTP server listens on                       |
//	| SBR_READINESS_CHECK_PATH  | No       | /healthz | Health check endpoint path                            |
//	| SBR_LOG_LEVEL             | No       | info     | Log level (debug, info, warn, error)                  |
//	| SBR_OTEL_EXPORTER         | No       | none     | Trace exporter: "none" or "stdout"                    |
//	| SBR_MAX_BYTES_PER_SECOND  | No       | 0        | Per-response throughput cap, 0 disables it            |
//	| SBR_MULTIPART_BOUNDARY    | No       | -        | Fixed multipart boundary instead of a random one      |
//
// # Errors while streaming
//
// Once the status line has been sent a failing data source can only be logged. The handler aborts the
// connection, and the error is logged through zap under the "servebyterange.rangeserver" logger.
package rangeserver
