// logging.go — middleware логирования запросов сервера разрешения.
// Помимо метода, пути и статуса в запись попадают параметры DRS-маршрута
// (object_id, access_method): по ним прогон разбирается без трассировки.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// statusRecorder перехватывает статус-код и размер ответа.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// RequestLogger логирует каждый запрос после обработки.
// Уровень зависит от статуса: INFO до 400, WARN 4xx, ERROR 5xx —
// 404 по неизвестному идентификатору остаётся предупреждением,
// а не ошибкой сервера.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.written),
				slog.String("remote_addr", r.RemoteAddr),
			}
			// Параметры маршрута заполняются роутером до вызова обработчика
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if objectID := rctx.URLParam("object_id"); objectID != "" {
					attrs = append(attrs, slog.String("object_id", objectID))
				}
				if method := rctx.URLParam("access_method"); method != "" {
					attrs = append(attrs, slog.String("access_method", method))
				}
			}

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "HTTP запрос", attrs...)
		})
	}
}
