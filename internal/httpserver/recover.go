package httpserver

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/ops-dashboard/internal/apierr"
	"github.com/fdg312/ops-dashboard/internal/userctx"
)

// RecoverMiddleware turns a handler panic into a 500. The stack goes to
// the log, never to the client.
func RecoverMiddleware(logger logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.WithFields(logrus.Fields{
				"request_id": userctx.GetRequestID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"panic":      rec,
				"stack":      string(debug.Stack()),
			}).Error("http: handler panic")

			apierr.Write(w, http.StatusInternalServerError, apierr.CodeInternal, "Internal server error", "")
		}()

		next.ServeHTTP(w, r)
	})
}
