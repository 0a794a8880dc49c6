// Package repository はデータ永続化層のインターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/minpost/internal/model"
)

// UserRepository はユーザーレコードの永続化インターフェース。
// ユーザーは登録時に1回作成され、以後は不変（更新・削除の操作は持たない）。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。
	// 見つからない場合は(nil, nil)を返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByID は指定IDのユーザーを取得する。見つからない場合は(nil, nil)を返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
	// Create はユーザーを作成する。メールアドレスの一意制約違反は
	// ErrDuplicateEmailとして返す。
	Create(ctx context.Context, user *model.User) error
}

// PostRepository は投稿レコードの永続化インターフェース。
// 整数IDをキーとするレコードストア。
type PostRepository interface {
	// Create は投稿を作成し、採番されたIDをpost.IDへ書き戻す。
	Create(ctx context.Context, post *model.Post) error
	// FindByID は指定IDの投稿を取得する。見つからない場合は(nil, nil)を返す。
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	// ListAll は全投稿を新しい順で返す。
	ListAll(ctx context.Context) ([]*model.Post, error)
	// Update は投稿のタイトルと本文を更新する。
	Update(ctx context.Context, post *model.Post) error
	// DeleteByID は指定IDの投稿を削除する。
	DeleteByID(ctx context.Context, id int64) error
}
