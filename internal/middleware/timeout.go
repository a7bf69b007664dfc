package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware that bounds the total time a request may
// spend in downstream handlers. When the deadline passes before the
// handler writes a response, the client receives a 408 and any late
// write from the handler is discarded.
func Timeout(logger *slog.Logger, d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})

			go func() {
				defer func() {
					if rec := recover(); rec != nil {
						logger.Error("panic in timed handler",
							slog.Any("panic", rec),
							slog.String("request_id", GetRequestID(ctx)),
						)
						tw.writeError(http.StatusInternalServerError, "Something went wrong on the server")
					}
					close(done)
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if tw.markTimedOut() {
					logger.Warn("request timed out",
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.Duration("timeout", d),
						slog.String("request_id", GetRequestID(ctx)),
					)
					writeJSONError(w, http.StatusRequestTimeout,
						"Request timeout - server took too long to respond")
				}
				// The handler goroutine keeps running against the
				// cancelled context; its writes go nowhere.
			}
		})
	}
}

// timeoutWriter serializes writes between the handler goroutine and the
// timeout path so exactly one of them produces the response.
type timeoutWriter struct {
	w http.ResponseWriter

	mu       sync.Mutex
	wrote    bool
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wrote {
		return
	}
	tw.wrote = true
	tw.w.WriteHeader(status)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.wrote = true
	return tw.w.Write(b)
}

// markTimedOut flips the writer into its discard state. It reports true
// when the handler had not yet written, meaning the timeout response
// should be sent.
func (tw *timeoutWriter) markTimedOut() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wrote {
		return false
	}
	tw.timedOut = true
	return true
}

// writeError emits an error response through the guarded writer, so the
// usual at-most-one-response rule still holds.
func (tw *timeoutWriter) writeError(status int, message string) {
	tw.mu.Lock()
	blocked := tw.timedOut || tw.wrote
	tw.mu.Unlock()
	if blocked {
		return
	}
	writeJSONError(tw, status, message)
}
