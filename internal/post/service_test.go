package post

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/minpost/internal/model"
	"github.com/hitoshi/minpost/internal/security"
)

// --- モック定義 ---

type mockPostRepo struct {
	posts  map[int64]*model.Post
	nextID int64
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]*model.Post), nextID: 1}
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	post.ID = m.nextID
	m.nextID++
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (m *mockPostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	var out []*model.Post
	for id := m.nextID - 1; id >= 1; id-- {
		if post, ok := m.posts[id]; ok {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockPostRepo) Update(ctx context.Context, post *model.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return errors.New("post not found")
	}
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepo) DeleteByID(ctx context.Context, id int64) error {
	delete(m.posts, id)
	return nil
}

func newTestService() (*Service, *mockPostRepo) {
	repo := newMockPostRepo()
	return NewService(repo, security.NewContentSanitizer()), repo
}

// --- テスト ---

func TestCreate_AssignsIDAndSanitizesBody(t *testing.T) {
	svc, _ := newTestService()

	post, err := svc.Create(context.Background(), "user-1", "hello", `<p>body</p><script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if post.ID == 0 {
		t.Error("expected assigned integer ID")
	}
	if strings.Contains(post.Body, "script") {
		t.Errorf("body should be sanitized: %q", post.Body)
	}
	if !strings.Contains(post.Body, "<p>body</p>") {
		t.Errorf("allowed tags should survive: %q", post.Body)
	}
}

func TestCreate_EmptyTitle_ReturnsError(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "user-1", "  ", "body")
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("error = %v, want ErrEmptyTitle", err)
	}
}

func TestGet_UnknownID_ReturnsNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), "user-1", "first", "a")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := svc.Create(context.Background(), "user-1", "second", "b")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2", len(posts))
	}
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Errorf("posts should come newest first: got %d, %d", posts[0].ID, posts[1].ID)
	}
}

func TestUpdate_OnlyAuthorCanUpdate(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), "user-1", "title", "body")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.Update(context.Background(), "user-2", created.ID, "hacked", "x")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(context.Background(), "user-1", created.ID, "new title", "new body")
	if err != nil {
		t.Fatalf("author update failed: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("title = %q, want %q", updated.Title, "new title")
	}
}

func TestDelete_OnlyAuthorCanDelete(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), "user-1", "title", "body")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-2", created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	if err := svc.Delete(context.Background(), "user-1", created.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted post should not be found, error = %v", err)
	}
}
