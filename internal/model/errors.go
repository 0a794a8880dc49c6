package model

import (
	"errors"
	"fmt"
)

// AuthError は認証ドメインの統一エラーフォーマットを表す。
// Messageはフォームへそのまま再表示できるユーザー向け文言を持つ。
// Fieldは入力検証エラーの原因となった項目名（email / password）。
type AuthError struct {
	Code    string // エラーコード
	Message string // ユーザー向けメッセージ
	Field   string // 原因フィールド（検証エラーのみ）
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeRegistrationFailed = "REGISTRATION_FAILED"
	ErrCodeLoginFailed        = "LOGIN_FAILED"
)

// ErrInvalidCredentials はログイン失敗時の共有エラー値。
// メールアドレス不明とパスワード不一致のどちらでも同一の値を返し、
// ユーザー列挙の手がかりを与えない。
var ErrInvalidCredentials = &AuthError{
	Code:    ErrCodeInvalidCredentials,
	Message: "メールアドレスまたはパスワードが正しくありません。",
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(field, message string) *AuthError {
	return &AuthError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *AuthError {
	return &AuthError{
		Code:    ErrCodeDuplicateEmail,
		Message: "このメールアドレスは既に登録されています。",
	}
}

// NewRegistrationFailedError は登録処理の予期しない失敗を表すエラーを生成する。
// 原因はログにのみ記録し、ユーザーには一般的なメッセージを見せる。
func NewRegistrationFailedError() *AuthError {
	return &AuthError{
		Code:    ErrCodeRegistrationFailed,
		Message: "登録に失敗しました。しばらく待ってから再度お試しください。",
	}
}

// NewLoginFailedError はログイン処理の予期しない失敗を表すエラーを生成する。
func NewLoginFailedError() *AuthError {
	return &AuthError{
		Code:    ErrCodeLoginFailed,
		Message: "ログインに失敗しました。しばらく待ってから再度お試しください。",
	}
}

// AsAuthError はエラーチェーンからAuthErrorを取り出す。
// 認証ドメインのエラーでない場合はnilとfalseを返す。
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
