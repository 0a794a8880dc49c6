package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/minpost/internal/middleware"
	"github.com/hitoshi/minpost/internal/model"
	"github.com/hitoshi/minpost/internal/post"
)

// mockPostService はPostServiceInterfaceのモック実装
type mockPostService struct {
	createFunc func(ctx context.Context, authorID, title, body string) (*model.Post, error)
	getFunc    func(ctx context.Context, id int64) (*model.Post, error)
	listFunc   func(ctx context.Context) ([]*model.Post, error)
	updateFunc func(ctx context.Context, requesterID string, id int64, title, body string) (*model.Post, error)
	deleteFunc func(ctx context.Context, requesterID string, id int64) error
}

func (m *mockPostService) Create(ctx context.Context, authorID, title, body string) (*model.Post, error) {
	return m.createFunc(ctx, authorID, title, body)
}

func (m *mockPostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return m.getFunc(ctx, id)
}

func (m *mockPostService) List(ctx context.Context) ([]*model.Post, error) {
	return m.listFunc(ctx)
}

func (m *mockPostService) Update(ctx context.Context, requesterID string, id int64, title, body string) (*model.Post, error) {
	return m.updateFunc(ctx, requesterID, id, title, body)
}

func (m *mockPostService) Delete(ctx context.Context, requesterID string, id int64) error {
	return m.deleteFunc(ctx, requesterID, id)
}

type stubUserFinder struct {
	user *model.User
}

func (s *stubUserFinder) CurrentUser(_ context.Context, _ string) (*model.User, error) {
	return s.user, nil
}

func newPostHandlerForTest(t *testing.T, service PostServiceInterface) *PostHandler {
	t.Helper()
	finder := &stubUserFinder{user: &model.User{ID: "user-1", Email: "alice@example.com"}}
	return NewPostHandler(service, finder, newTestRenderer(t))
}

// authedRequest は識別済みコンテキストとchiルートパラメータを持つリクエストを作る。
func authedRequest(method, path, id string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func samplePost(id int64) *model.Post {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.Post{
		ID:        id,
		AuthorID:  "user-1",
		Title:     "最初の投稿",
		Body:      "<p>こんにちは</p>",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostHandler_Index(t *testing.T) {
	service := &mockPostService{
		listFunc: func(_ context.Context) ([]*model.Post, error) {
			return []*model.Post{samplePost(2), samplePost(1)}, nil
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Index(rec, authedRequest(http.MethodGet, "/posts", "", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "最初の投稿") {
		t.Error("response should list post titles")
	}
	if !strings.Contains(body, "alice@example.com") {
		t.Error("response should show the current user email")
	}
}

func TestPostHandler_Show(t *testing.T) {
	service := &mockPostService{
		getFunc: func(_ context.Context, id int64) (*model.Post, error) {
			if id != 7 {
				t.Errorf("id = %d, want 7", id)
			}
			return samplePost(7), nil
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Show(rec, authedRequest(http.MethodGet, "/posts/7", "7", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	// サニタイズ済み本文はエスケープなしで描画される
	if !strings.Contains(rec.Body.String(), "<p>こんにちは</p>") {
		t.Error("sanitized body should be rendered as HTML")
	}
}

func TestPostHandler_Show_NotFound(t *testing.T) {
	service := &mockPostService{
		getFunc: func(_ context.Context, _ int64) (*model.Post, error) {
			return nil, post.ErrNotFound
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Show(rec, authedRequest(http.MethodGet, "/posts/99", "99", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostHandler_Show_InvalidID(t *testing.T) {
	h := newPostHandlerForTest(t, &mockPostService{})

	rec := httptest.NewRecorder()
	h.Show(rec, authedRequest(http.MethodGet, "/posts/abc", "abc", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostHandler_Create_Success(t *testing.T) {
	service := &mockPostService{
		createFunc: func(_ context.Context, authorID, title, body string) (*model.Post, error) {
			if authorID != "user-1" {
				t.Errorf("authorID = %q, want user-1", authorID)
			}
			p := samplePost(3)
			p.Title = title
			p.Body = body
			return p, nil
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/posts", "", url.Values{
		"title": {"新しい投稿"},
		"body":  {"本文"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/posts/3" {
		t.Errorf("Location = %q, want /posts/3", loc)
	}
}

func TestPostHandler_Create_EmptyTitle(t *testing.T) {
	service := &mockPostService{
		createFunc: func(_ context.Context, _, _, _ string) (*model.Post, error) {
			return nil, post.ErrEmptyTitle
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/posts", "", url.Values{
		"title": {""},
		"body":  {"本文"},
	}))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "タイトルを入力してください。") {
		t.Error("response should contain the empty title message")
	}
}

func TestPostHandler_Update_ForbiddenHiddenAsNotFound(t *testing.T) {
	service := &mockPostService{
		updateFunc: func(_ context.Context, _ string, _ int64, _, _ string) (*model.Post, error) {
			return nil, post.ErrForbidden
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Update(rec, authedRequest(http.MethodPost, "/posts/7", "7", url.Values{
		"title": {"改変"},
		"body":  {"本文"},
	}))

	// 他人の投稿は存在自体を隠すため404
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostHandler_Delete_Success(t *testing.T) {
	var deletedID int64
	service := &mockPostService{
		deleteFunc: func(_ context.Context, requesterID string, id int64) error {
			if requesterID != "user-1" {
				t.Errorf("requesterID = %q, want user-1", requesterID)
			}
			deletedID = id
			return nil
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.Delete(rec, authedRequest(http.MethodPost, "/posts/5/delete", "5", nil))

	if deletedID != 5 {
		t.Errorf("deleted ID = %d, want 5", deletedID)
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/posts" {
		t.Errorf("Location = %q, want /posts", loc)
	}
}

func TestPostHandler_APIList(t *testing.T) {
	service := &mockPostService{
		listFunc: func(_ context.Context) ([]*model.Post, error) {
			return []*model.Post{samplePost(1)}, nil
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.APIList(rec, authedRequest(http.MethodGet, "/api/posts", "", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var out []postJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].ID != 1 || out[0].AuthorID != "user-1" {
		t.Errorf("unexpected payload: %+v", out[0])
	}
}

func TestPostHandler_APIShow_NotFound(t *testing.T) {
	service := &mockPostService{
		getFunc: func(_ context.Context, _ int64) (*model.Post, error) {
			return nil, post.ErrNotFound
		},
	}
	h := newPostHandlerForTest(t, service)

	rec := httptest.NewRecorder()
	h.APIShow(rec, authedRequest(http.MethodGet, "/api/posts/99", "99", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
