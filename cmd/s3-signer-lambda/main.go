// Command s3-signer-lambda runs the signer behind AWS API Gateway,
// translating proxy events into plain HTTP requests for the router.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/media-io/s3-signer/internal/config"
	"github.com/media-io/s3-signer/internal/server"
)

var version = "dev"

var router http.Handler

func init() {
	var (
		cfg config.Store
		err error
	)
	if hostname := os.Getenv("AWS_HOSTNAME"); hostname != "" {
		cfg, err = config.NewWithHostname(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			os.Getenv("AWS_REGION"),
			hostname,
		)
	} else {
		cfg, err = config.New(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			os.Getenv("AWS_REGION"),
		)
	}
	if err != nil {
		slog.Error("invalid store configuration", "error", err)
		os.Exit(1)
	}

	router = server.New(cfg, version).Handler()
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	httpReq, err := toHTTPRequest(ctx, req)
	if err != nil {
		slog.Error("translating API Gateway event", "error", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       "Internal server error",
		}, nil
	}

	rec := newResponseRecorder()
	router.ServeHTTP(rec, httpReq)

	return events.APIGatewayProxyResponse{
		StatusCode: rec.statusCode,
		Headers:    rec.headers(),
		Body:       string(rec.body),
	}, nil
}

// toHTTPRequest rebuilds an http.Request from an API Gateway proxy event.
func toHTTPRequest(ctx context.Context, req events.APIGatewayProxyRequest) (*http.Request, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	path := req.Path
	for param, value := range req.PathParameters {
		path = strings.ReplaceAll(path, "{"+param+"}", value)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.HTTPMethod, path, body)
	if err != nil {
		return nil, err
	}

	query := httpReq.URL.Query()
	for param, value := range req.QueryStringParameters {
		query.Add(param, value)
	}
	httpReq.URL.RawQuery = query.Encode()

	for key, value := range req.Headers {
		httpReq.Header.Add(key, value)
	}

	return httpReq, nil
}

// responseRecorder captures the router's response so it can be converted
// back into an API Gateway proxy response.
type responseRecorder struct {
	header     http.Header
	body       []byte
	statusCode int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{
		header:     http.Header{},
		statusCode: http.StatusOK,
	}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) Write(body []byte) (int, error) {
	r.body = append(r.body, body...)
	return len(body), nil
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
}

func (r *responseRecorder) headers() map[string]string {
	flat := make(map[string]string, len(r.header))
	for key, values := range r.header {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return flat
}

func main() {
	lambda.Start(handler)
}
