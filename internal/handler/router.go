package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/minpost/internal/metrics"
	"github.com/hitoshi/minpost/internal/middleware"
	"github.com/hitoshi/minpost/internal/view"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver middleware.SessionResolver
	Logger          *slog.Logger
	Metrics         middleware.StatusRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 投稿
	PostService PostServiceInterface

	// 表示
	Renderer *view.Renderer

	// メトリクス公開
	Gatherer prometheus.Gatherer
}

// NewRouter は全ルートとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → Session
//
// セッションミドルウェアは全リクエストで識別のみを行い、アクセス制御は
// ガード（RequireAuth / RequireAuthAPI）が保護対象ルートでのみ行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.AuthConfig)
	postHandler := NewPostHandler(deps.PostService, deps.AuthService, deps.Renderer)

	// --- 認証不要のルート ---

	r.Get("/", authHandler.Root)
	r.Get("/register", authHandler.ShowRegister)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)
	// ログアウトはセッションが無くても安全な冪等操作のためガード外に置く
	r.Post("/logout", authHandler.Logout)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なHTMLルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.Index)
			r.Post("/", postHandler.Create)
			r.Get("/new", postHandler.New)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", postHandler.Show)
				r.Post("/", postHandler.Update)
				r.Get("/edit", postHandler.Edit)
				r.Post("/delete", postHandler.Delete)
			})
		})
	})

	// --- 認証が必要なAPIルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthAPI)

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.APIList)
			r.Get("/{id}", postHandler.APIShow)
		})
	})

	return r
}
