package middleware

import (
	"net/http"
	"time"
)

// RequestMetrics はHTTPリクエストの結果を記録するインターフェース。
type RequestMetrics interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// NewMetricsMiddleware はリクエストのステータスコードとレイテンシを記録するミドルウェアを返す。
func NewMetricsMiddleware(rec RequestMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			rec.RecordHTTPStatus(rw.statusCode)
			rec.RecordRequestLatency(time.Since(start))
		})
	}
}
