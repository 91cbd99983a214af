/*
Package logging provides the service's structured logger.

PURPOSE:
  Builds a zerolog logger from config, carries it through request contexts,
  logs HTTP requests, and adapts rewards engine diagnostics into debug logs.

FORMATS:
  console: human-readable, for local runs
  json:    one object per line, for log shipping

SEE ALSO:
  - api/server.go:     RequestLogger in the middleware stack
  - rewards/types.go:  Observer and Event
*/
package logging

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/warp/reward-points/rewards"
)

type ctxKey struct{}

// Config selects level and output format.
type Config struct {
	Level  string
	Format string
}

// New creates a logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, cfg.Level)
}

// NewWithWriter creates a logger with a custom writer. Unknown levels fall back to info.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}
	return zerolog.Nop()
}

// RequestLogger logs one line per request and puts a request-scoped logger
// (tagged with the chi request id) into the request context.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ev := reqLog.Info()
			if status >= http.StatusInternalServerError {
				ev = reqLog.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}

// RewardsObserver reports engine events at debug level. Records the engine
// had to skip or zero out are logged at warn.
func RewardsObserver(log zerolog.Logger) rewards.Observer {
	return func(e rewards.Event) {
		switch e.Kind {
		case rewards.EventSkippedDate:
			log.Warn().
				Str("transaction_id", e.TransactionID).
				Str("date", e.Date).
				Msg("transaction date unparseable, excluded from monthly points")
		case rewards.EventInvalidAmount:
			log.Warn().
				Str("transaction_id", e.TransactionID).
				Msg("transaction amount invalid, priced at 0 points")
		default:
			log.Debug().
				Str("transaction_id", e.TransactionID).
				Str("amount", e.Amount).
				Int64("points", e.Points).
				Msg("points calculated")
		}
	}
}
