package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"ticket-selling/internal/logger"
	"ticket-selling/internal/utils"
)

// RequestLogger logs every request through the category logger, at a level
// that follows the response status.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start).String()
			switch {
			case status >= 500:
				log.Error("API", fmt.Sprintf("%s %s - %d (%s)", r.Method, r.URL.Path, status, duration))
			case status >= 400:
				log.Warn("API", fmt.Sprintf("%s %s - %d (%s) - Client Error", r.Method, r.URL.Path, status, duration))
			default:
				log.LogAPI(r.Method, r.URL.Path, fmt.Sprint(status), duration)
			}
		})
	}
}

// Recoverer turns a panic into a 500 with the standard envelope.
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("PANIC", fmt.Sprintf("Recovered from panic: %v", rec))
					utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", kindInternal))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit sheds requests beyond rps (with the given burst) across all clients.
func RateLimit(log *logger.Logger, rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.LogRateLimited(r.Method, r.URL.Path, r.RemoteAddr)
				w.Header().Set("Retry-After", "1")
				status, kind := classify(errRateLimited)
				utils.WriteJSON(w, status, utils.ErrorResponse("Rate limit exceeded", kind))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
