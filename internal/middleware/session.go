// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
)

// SessionCookieName はセッショントークンを運ぶCookie名。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// SessionResolver はセッショントークンの解決に必要なインターフェース。
// session.Storeの部分集合として定義する。
type SessionResolver interface {
	Resolve(token string) (string, bool)
}

// NewSessionMiddleware はCookieのセッショントークンを解決し、
// 認証済みユーザーIDをリクエストコンテキストに注入するミドルウェアを返す。
//
// この層では識別だけを行い、アクセス制御は行わない。Cookieが無い・
// トークンが無効・期限切れのいずれでもリクエストは匿名のまま先へ進む。
// アクセス拒否はRequireAuth / RequireAuthAPIの責務。
// 注入された識別情報はそのリクエストの処理中のみ有効で、永続化されない。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := resolver.Resolve(cookie.Value)
			if !ok {
				// 未知か期限切れかは区別しない
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアで識別済みのリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
