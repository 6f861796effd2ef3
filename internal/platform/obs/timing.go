package obs

import (
	"context"
	"dispatch-route-service/internal/platform/metrics"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs the logger used by Time. Nil resets to a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// WithRequestID attaches a request id to ctx for Time log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time starts timing op name. Call the returned func with a pointer to the
// operation's named error result, typically via defer.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)
		l := logger.Load()

		if errp != nil && *errp != nil {
			metrics.OpDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			l.Warn("op failed",
				zap.String("req_id", reqID),
				zap.String("op", name),
				zap.Duration("dur", dur),
				zap.Error(*errp),
			)
			return
		}
		metrics.OpDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		l.Debug("op done",
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Duration("dur", dur),
		)
	}
}
