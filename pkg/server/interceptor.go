package server

import (
	"context"
	"time"

	"github.com/bufbuild/connect-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-Id"

type loggerKey struct{}

// NewLoggingInterceptor tags every request with an id, taken from the X-Request-Id header when
// the client sent one, and stores a logger carrying it in the context.
func NewLoggingInterceptor(logger *zap.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			requestID := req.Header().Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			requestLogger := logger.With(zap.String("request_id", requestID), zap.String("procedure", procedure))

			response, err := next(context.WithValue(ctx, loggerKey{}, requestLogger), req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}

			rpcRequests.WithLabelValues(procedure, code).Inc()

			// response wraps a nil pointer when err is set
			if err == nil {
				response.Header().Set(RequestIDHeader, requestID)
			}

			requestLogger.Info("handled request", zap.String("code", code), zap.Duration("elapsed", time.Since(start)))

			return response, err
		}
	}
}

// LoggerFrom returns the request logger stored by the logging interceptor, or fallback.
func LoggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}

	return fallback
}

// NewTimeoutInterceptor bounds every request by timeout. A zero timeout leaves requests unbounded.
func NewTimeoutInterceptor(timeout time.Duration) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if timeout <= 0 {
				return next(ctx, req)
			}

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, req)
		}
	}
}
