package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records metrics and recovers panics for one route.
func (h *Handler) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				h.logger.Error("handler panic", zap.String("route", route), zap.Any("panic", p))
				h.writeError(rec, http.StatusInternalServerError, internalErrorText)
			}
			h.metrics.ObserveRequest(route, rec.code, started)
			h.logger.Debug("request served",
				zap.String("route", route),
				zap.Int("code", rec.code),
				zap.Duration("took", time.Since(started)),
			)
		}()

		r.Body = http.MaxBytesReader(rec, r.Body, maxRequestBytes)
		next(rec, r)
	})
}

func parseDays(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxStatsDays {
		return 0, fmt.Errorf("days must be an integer between 1 and %d", maxStatsDays)
	}
	return n, nil
}
