// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Emailは登録時に小文字へ正規化して保存するため、重複判定は実質的に
// 大文字小文字を区別しない。
// PasswordHashはbcryptダイジェストであり、テンプレートやJSONなど
// クライアント向け出力には決して含めない。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// トークン自体はCookieにのみ存在し、サーバー側はHMACダイジェストを
// キーとして保持する。UserIDは弱い参照であり、参照先ユーザーが
// 存在しなくなってもリクエスト処理は失敗させない（匿名として扱う）。
type Session struct {
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
