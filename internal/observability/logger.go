package observability

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// package-level logger, JSON to stdout. main swaps in a development
// logger when debug is on.
var logger = zap.Must(zap.NewProduction()).Sugar()

func Logger() *zap.SugaredLogger {
	return logger
}

// SetLogger replaces the package logger. Called once at startup.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
