// Package post は投稿管理のドメインロジックを提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/minpost/internal/model"
	"github.com/hitoshi/minpost/internal/repository"
	"github.com/hitoshi/minpost/internal/security"
)

var (
	// ErrNotFound は投稿が存在しない場合のエラー。
	ErrNotFound = errors.New("post not found")
	// ErrForbidden は投稿の作者以外による変更を表す。
	ErrForbidden = errors.New("not the author of this post")
	// ErrEmptyTitle はタイトル未入力を表す。
	ErrEmptyTitle = errors.New("title is required")
)

// Service は投稿のCRUDロジックを提供する。
// 本文はUGCとして保存前にサニタイズする。
type Service struct {
	repo      repository.PostRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.PostRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は投稿を作成する。タイトルはタグを除去し、本文は許可リストで
// サニタイズしてから保存する。
func (s *Service) Create(ctx context.Context, authorID, title, body string) (*model.Post, error) {
	title = strings.TrimSpace(s.sanitizer.SanitizeText(title))
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now()
	post := &model.Post{
		AuthorID:  authorID,
		Title:     title,
		Body:      s.sanitizer.Sanitize(body),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// Get は指定IDの投稿を返す。存在しない場合はErrNotFound。
func (s *Service) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// List は全投稿を新しい順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Update は投稿を更新する。作者本人のみが更新できる。
// 作者以外にはErrForbiddenを返す（ハンドラー側で404へ写像し、
// 投稿の存在を漏らさない）。
func (s *Service) Update(ctx context.Context, requesterID string, id int64, title, body string) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID {
		return nil, ErrForbidden
	}

	title = strings.TrimSpace(s.sanitizer.SanitizeText(title))
	if title == "" {
		return nil, ErrEmptyTitle
	}

	post.Title = title
	post.Body = s.sanitizer.Sanitize(body)
	post.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// Delete は投稿を削除する。作者本人のみが削除できる。
func (s *Service) Delete(ctx context.Context, requesterID string, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return ErrForbidden
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}
