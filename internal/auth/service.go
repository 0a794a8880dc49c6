// Package auth は登録・ログイン・ログアウトの認証ドメインロジックを提供する。
//
// クライアントごとの認証状態はAnonymousとAuthenticated(userId)の2状態で、
// Register/Loginが成功時のみAuthenticatedへ遷移させ、Logoutは常に
// Anonymousへ戻す。失敗はすべてそのリクエストで完結し、リトライは行わない。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/minpost/internal/model"
	"github.com/hitoshi/minpost/internal/repository"
)

// minPasswordLength は登録時のパスワード最低長。
// ログイン時には長さ検証を行わない（存在チェックのみ）。
const minPasswordLength = 6

// SessionStore はセッションの発行・破棄に必要なインターフェース。
// session.Storeの部分集合として定義する。
type SessionStore interface {
	Create(userID string) (string, error)
	Destroy(token string)
}

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
// security.PasswordHasherの部分集合として定義する。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuthMetrics は認証イベントの記録インターフェース。
type AuthMetrics interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// noopMetrics はメトリクス未設定時のフォールバック。
type noopMetrics struct{}

func (noopMetrics) RecordRegistration() {}
func (noopMetrics) RecordLoginSuccess() {}
func (noopMetrics) RecordLoginFailure() {}

// Service は認証に関するビジネスロジックを提供する。
// パスワードハッシュは意図的にCPUコストが高いため、共有ロックを
// 保持したまま実行しない（セッションストアのロックはmap操作のみを守る）。
type Service struct {
	userRepo repository.UserRepository
	sessions SessionStore
	hasher   PasswordHasher
	metrics  AuthMetrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(userRepo repository.UserRepository, sessions SessionStore, hasher PasswordHasher, metrics AuthMetrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
		hasher:   hasher,
		metrics:  metrics,
	}
}

// normalizeEmail はメールアドレスを小文字へ正規化する。
// 保存・検索の両方でこの形を使うため、重複判定は実質的に
// 大文字小文字を区別しない。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegistration は登録入力を検証する。
func validateRegistration(email, password string) *model.AuthError {
	if email == "" {
		return model.NewValidationError("email", "メールアドレスを入力してください。")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.NewValidationError("email", "メールアドレスの形式が正しくありません。")
	}
	if len(password) < minPasswordLength {
		return model.NewValidationError("password", fmt.Sprintf("パスワードは%d文字以上で入力してください。", minPasswordLength))
	}
	return nil
}

// Register は新規ユーザーを登録し、セッションを発行する。
// 成功時は作成されたユーザーとセッショントークンを返す。
// 失敗時はAuthErrorを返し、セッションは発行されない。
//
// 同一メールアドレスの同時登録はlookupを両方通過しうるが、
// users.emailの一意制約違反をDuplicateEmailへ写像することで
// クラッシュではなく通常の重複エラーとして閉じる。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)

	if vErr := validateRegistration(email, password); vErr != nil {
		return nil, "", vErr
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("registration lookup failed", slog.String("error", err.Error()))
		return nil, "", model.NewRegistrationFailedError()
	}
	if existing != nil {
		return nil, "", model.NewDuplicateEmailError()
	}

	// ハッシュ化はロック外で行う（CPUコストが高い）
	digest, err := s.hasher.Hash(password)
	if err != nil {
		slog.Error("password hashing failed", slog.String("error", err.Error()))
		return nil, "", model.NewRegistrationFailedError()
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", model.NewDuplicateEmailError()
		}
		slog.Error("user creation failed", slog.String("error", err.Error()))
		return nil, "", model.NewRegistrationFailedError()
	}

	token, err := s.sessions.Create(user.ID)
	if err != nil {
		slog.Error("session creation failed after registration",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", model.NewRegistrationFailedError()
	}

	s.metrics.RecordRegistration()
	slog.Info("new user registered", slog.String("user_id", user.ID))

	return user, token, nil
}

// Login は資格情報を検証し、新しいセッションを発行する。
// メールアドレス不明とパスワード不一致は同一のエラー値
// （model.ErrInvalidCredentials）を返し、どちらが誤っているかを
// 外部から区別できないようにする。
// ログインのたびに新規トークンを発行し、同一ユーザーの既存
// セッションには触れない（マルチセッション）。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)

	if email == "" || password == "" {
		s.metrics.RecordLoginFailure()
		return nil, "", model.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("login lookup failed", slog.String("error", err.Error()))
		return nil, "", model.NewLoginFailedError()
	}
	if user == nil {
		s.metrics.RecordLoginFailure()
		return nil, "", model.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordLoginFailure()
		return nil, "", model.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(user.ID)
	if err != nil {
		slog.Error("session creation failed after login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", model.NewLoginFailedError()
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return user, token, nil
}

// Logout はトークンに対応するセッションを破棄する。
// 冪等であり常に成功する。既に無効なトークンでも何も起きない。
func (s *Service) Logout(token string) {
	s.sessions.Destroy(token)
}

// CurrentUser はセッションが指すユーザーを取得する。
// セッションのユーザー参照は弱い参照であり、参照先が存在しない場合は
// エラーではなく(nil, nil)を返す。呼び出し側は匿名として扱うこと。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
