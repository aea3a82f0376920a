package main

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mkarvon/fitplan/internal/contexthelpers"
	"github.com/mkarvon/fitplan/internal/errors"
	"github.com/mkarvon/fitplan/internal/logging"
)

// sessionKeyUserID is the session key holding the authenticated user's ID.
const sessionKeyUserID = "userID"

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		headerWritten:  false,
	}
}

func (mw *statusResponseWriter) WriteHeader(statusCode int) {
	mw.ResponseWriter.WriteHeader(statusCode)

	if !mw.headerWritten {
		mw.statusCode = statusCode
		mw.headerWritten = true
	}
}

func (mw *statusResponseWriter) Write(b []byte) (int, error) {
	mw.headerWritten = true
	written, err := mw.ResponseWriter.Write(b)
	if err != nil {
		return written, errors.Wrap(err, "write response")
	}
	return written, nil
}

func (mw *statusResponseWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		next.ServeHTTP(w, r)
	})
}

// slowRequestThreshold is when a completed request counts as slow enough to
// dump a flight recorder trace.
const slowRequestThreshold = defaultTimeout / 2

func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := rand.Text()
		ctx := logging.WithAttrs(
			r.Context(),
			slog.String("trace_id", traceID),
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
		)
		r = contexthelpers.SetTraceID(r.WithContext(ctx), traceID)

		start := time.Now()
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request")

		sw := newStatusResponseWriter(w)
		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		level := slog.LevelInfo
		if sw.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(r.Context(), level, "request completed",
			slog.Int("status_code", sw.statusCode), slog.Duration("duration", duration))

		if app.flightRecorder != nil && duration >= slowRequestThreshold {
			app.flightRecorder.CaptureSlowRequestTrace(r.Context())
		}
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if excp := recover(); excp != nil {
				app.serverError(w, r, errors.DecoratePanic(excp))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the session to a user and stores it in the request
// context. Unknown or missing sessions pass through as anonymous.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := app.sessionManager.GetString(r.Context(), sessionKeyUserID); id != "" {
			if userID, err := uuid.Parse(id); err == nil {
				r = contexthelpers.AuthenticateContext(r, userID)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// mustAuthenticate rejects anonymous requests.
func (app *application) mustAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAuthenticated(r.Context()) {
			app.clientError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// timeout times out the request a little before the server write deadline so
// the handler can still respond.
func (app *application) timeout(next http.Handler) http.Handler {
	handlerTimeout := defaultTimeout - 200*time.Millisecond //nolint:mnd // writing the response takes time.
	return http.TimeoutHandler(next, handlerTimeout, `{"error":"timed out"}`)
}
