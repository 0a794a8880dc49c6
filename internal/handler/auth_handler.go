// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/minpost/internal/middleware"
	"github.com/hitoshi/minpost/internal/model"
	"github.com/hitoshi/minpost/internal/view"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(token string)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
	SessionTTL   time.Duration // Cookie MaxAgeに使用（セッションTTLと一致させる）
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
// 認証ドメインのエラーはすべてここで捕捉し、エラーメッセージ付きの
// フォーム再表示（HTTP 200）へ変換する。リクエストを落とすことはない。
type AuthHandler struct {
	service  AuthServiceInterface
	renderer *view.Renderer
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, renderer *view.Renderer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		config:   config,
	}
}

// setSessionCookie はセッショントークンをHTTP Only Cookieとして設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ShowRegister は登録フォームを表示する。
// GET /register
// ログイン済みの場合は投稿一覧へリダイレクトする。
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err == nil {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, http.StatusOK, "register", view.PageData{Title: "アカウント登録"})
}

// Register は新規ユーザーを登録し、セッションCookieを設定する。
// POST /register
// 認証ドメインのエラーは200でフォームへ再表示し、成功時は/postsへ
// リダイレクトする。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, token, err := h.service.Register(r.Context(), email, password)
	if err != nil {
		if authErr, ok := model.AsAuthError(err); ok {
			h.renderer.Render(w, http.StatusOK, "register", view.PageData{
				Title: "アカウント登録",
				Email: email,
				Error: authErr.Message,
			})
			return
		}
		slog.Error("unexpected registration error", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// ShowLogin はログインフォームを表示する。
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err == nil {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, http.StatusOK, "login", view.PageData{Title: "ログイン"})
}

// Login は資格情報を検証し、セッションCookieを設定する。
// POST /login
// 失敗理由がメールアドレスかパスワードかは区別せず、常に同一の
// メッセージでフォームへ再表示する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, token, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		if authErr, ok := model.AsAuthError(err); ok {
			h.renderer.Render(w, http.StatusOK, "login", view.PageData{
				Title: "ログイン",
				Email: email,
				Error: authErr.Message,
			})
			return
		}
		slog.Error("unexpected login error", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// Logout はセッションを破棄し、ログイン画面へリダイレクトする。
// POST /logout
// 冪等であり、有効なセッションが無くても常に成功する。
// ストアのエントリ削除とCookie削除はリダイレクト送信前に完了する。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.service.Logout(cookie.Value)
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Root は / へのアクセスを認証状態に応じて振り分ける。
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err == nil {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
