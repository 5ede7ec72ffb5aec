package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// contextKey はコンテキスト値のキー型。パッケージ外との衝突を防ぐ。
type contextKey string

const requestIDKey contextKey = "request_id"

// ErrNoRequestID はコンテキストにリクエストIDが存在しないことを表す。
var ErrNoRequestID = errors.New("no request id in context")

// NewRequestIDMiddleware は各リクエストにUUIDのリクエストIDを割り当てる
// ミドルウェアを返す。クライアントがX-Request-IDを送ってきた場合はそれを使う。
// IDはレスポンスヘッダーとリクエストコンテキストの両方に設定される。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はコンテキストからリクエストIDを取り出す。
func RequestIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(requestIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoRequestID
	}
	return id, nil
}
