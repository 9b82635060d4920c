package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// StreamingTimeout guards the playback and upload routes without buffering
// responses in memory the way http.TimeoutHandler does. It enforces:
//   - maxDuration: absolute ceiling for the whole transfer.
//   - idleTimeout: maximum gap between consecutive writes; a transfer that
//     stops producing bytes for this long is killed as stale.
//
// http.Flusher is preserved so partial-content responses reach the client
// incrementally instead of accumulating in buffers.
func StreamingTimeout(maxDuration, idleTimeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), maxDuration)
			defer cancel()

			// Connection-level deadlines unblock writes stuck on a dead
			// client once the ceiling passes.
			rc := http.NewResponseController(w)
			deadline := time.Now().Add(maxDuration)
			_ = rc.SetWriteDeadline(deadline)
			_ = rc.SetReadDeadline(deadline)

			sw := &streamingWriter{
				ResponseWriter: w,
				rc:             rc,
				idleTimeout:    idleTimeout,
				cancel:         cancel,
			}
			sw.resetIdle()

			next.ServeHTTP(sw, r.WithContext(ctx))

			sw.mu.Lock()
			if sw.idleTimer != nil {
				sw.idleTimer.Stop()
			}
			sw.mu.Unlock()
		})
	}
}

// streamingWriter wraps http.ResponseWriter with an inactivity timer. Every
// Write resets the countdown; when it fires, the context is cancelled and
// the connection deadline shortened so in-flight I/O fails fast.
type streamingWriter struct {
	http.ResponseWriter
	rc          *http.ResponseController
	idleTimeout time.Duration
	cancel      context.CancelFunc
	mu          sync.Mutex
	idleTimer   *time.Timer
}

func (sw *streamingWriter) resetIdle() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.idleTimer != nil {
		sw.idleTimer.Stop()
	}

	sw.idleTimer = time.AfterFunc(sw.idleTimeout, func() {
		_ = sw.rc.SetWriteDeadline(time.Now())
		sw.cancel()
	})
}

func (sw *streamingWriter) Write(b []byte) (int, error) {
	sw.resetIdle()
	return sw.ResponseWriter.Write(b)
}

func (sw *streamingWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func (sw *streamingWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
