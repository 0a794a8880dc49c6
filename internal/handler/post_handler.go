package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/minpost/internal/middleware"
	"github.com/hitoshi/minpost/internal/model"
	"github.com/hitoshi/minpost/internal/post"
	"github.com/hitoshi/minpost/internal/view"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, authorID, title, body string) (*model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	Update(ctx context.Context, requesterID string, id int64, title, body string) (*model.Post, error)
	Delete(ctx context.Context, requesterID string, id int64) error
}

// UserFinder はナビゲーション表示用にユーザーを引くインターフェース。
type UserFinder interface {
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// PostHandler は投稿のCRUD用HTTPハンドラー。
// ガード配下のルートでのみ使用され、識別情報の存在を前提とする。
type PostHandler struct {
	service  PostServiceInterface
	users    UserFinder
	renderer *view.Renderer
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, users UserFinder, renderer *view.Renderer) *PostHandler {
	return &PostHandler{
		service:  service,
		users:    users,
		renderer: renderer,
	}
}

// currentEmail はナビゲーション表示用のメールアドレスを返す。
// ユーザーが解決できない場合は空文字（表示だけの問題であり失敗にしない）。
func (h *PostHandler) currentEmail(r *http.Request) string {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		return ""
	}
	user, err := h.users.CurrentUser(r.Context(), userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

// postID はURLパラメータから投稿IDを取り出す。
func postID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// renderError はサービス層のエラーをHTTPレスポンスへ写像する。
// ErrForbiddenは404として返し、投稿の存在を漏らさない。
func (h *PostHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound), errors.Is(err, post.ErrForbidden):
		http.NotFound(w, r)
	default:
		slog.Error("post handler error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Index は投稿一覧を表示する。
// GET /posts
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "posts_index", view.PageData{
		Title:     "投稿一覧",
		UserEmail: h.currentEmail(r),
		Posts:     posts,
	})
}

// Show は投稿詳細を表示する。
// GET /posts/{id}
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "post_show", view.PageData{
		Title:     p.Title,
		UserEmail: h.currentEmail(r),
		Post:      p,
	})
}

// New は新規投稿フォームを表示する。
// GET /posts/new
func (h *PostHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "post_form", view.PageData{
		Title:     "新規投稿",
		UserEmail: h.currentEmail(r),
		Post:      &model.Post{},
	})
}

// Create は投稿を作成する。
// POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	title := r.PostFormValue("title")
	body := r.PostFormValue("body")

	created, err := h.service.Create(r.Context(), userID, title, body)
	if err != nil {
		if errors.Is(err, post.ErrEmptyTitle) {
			h.renderer.Render(w, http.StatusOK, "post_form", view.PageData{
				Title:     "新規投稿",
				UserEmail: h.currentEmail(r),
				Error:     "タイトルを入力してください。",
				Post:      &model.Post{Title: title, Body: body},
			})
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
}

// Edit は編集フォームを表示する。
// GET /posts/{id}/edit
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "post_form", view.PageData{
		Title:     "投稿を編集",
		UserEmail: h.currentEmail(r),
		Post:      p,
	})
}

// Update は投稿を更新する。
// POST /posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := postID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	title := r.PostFormValue("title")
	body := r.PostFormValue("body")

	updated, err := h.service.Update(r.Context(), userID, id, title, body)
	if err != nil {
		if errors.Is(err, post.ErrEmptyTitle) {
			h.renderer.Render(w, http.StatusOK, "post_form", view.PageData{
				Title:     "投稿を編集",
				UserEmail: h.currentEmail(r),
				Error:     "タイトルを入力してください。",
				Post:      &model.Post{ID: id, Title: title, Body: body},
			})
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.FormatInt(updated.ID, 10), http.StatusSeeOther)
}

// Delete は投稿を削除する。
// POST /posts/{id}/delete
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := postID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// postJSON は投稿のAPIレスポンス形式。PasswordHash等を含む構造体を
// そのままエンコードしないための明示的な変換。
type postJSON struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toPostJSON(p *model.Post) postJSON {
	return postJSON{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// APIList は投稿一覧をJSONで返す。
// GET /api/posts
func (h *PostHandler) APIList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	out := make([]postJSON, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostJSON(p))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

// APIShow は投稿詳細をJSONで返す。
// GET /api/posts/{id}
func (h *PostHandler) APIShow(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(toPostJSON(p))
}
