package middleware

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Recover turns a panic in a handler into a call to fail.
func Recover(logger *zap.Logger, fail func(http.ResponseWriter, *http.Request, error)) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rv := recover(); rv != nil {
					if rv == http.ErrAbortHandler {
						panic(rv)
					}
					logger.Error("panic in handler",
						zap.String("request_id", RequestID(r.Context())),
						zap.Any("panic", rv),
						zap.Stack("stack"),
					)
					fail(w, r, fmt.Errorf("panic: %v", rv))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
