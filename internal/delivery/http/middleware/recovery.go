package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/frontandrew/plakatakip/internal/pkg/logger"
)

// RecoveryMiddleware перехватывает panic в обработчике и отвечает 500.
// Панику ErrAbortHandler пробрасывает дальше, сервер сам обрывает соединение.
func RecoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				fields := map[string]interface{}{
					"panic":  fmt.Sprint(rvr),
					"stack":  string(debug.Stack()),
					"method": r.Method,
					"path":   r.URL.Path,
				}
				if id := chimw.GetReqID(r.Context()); id != "" {
					fields["request_id"] = id
				}
				if claims, ok := GetUserClaims(r.Context()); ok {
					fields["username"] = claims.Username
				}
				log.Error("Handler panicked", fields)

				respondError(w, http.StatusInternalServerError, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
