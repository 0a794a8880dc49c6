// Package session はプロセス内メモリ上のセッションストアを提供する。
//
// ストアはプロセスの生存期間だけ有効であり、再起動で全セッションが
// 無効になる。これは仕様上の制限であり永続化は行わない。
// トークンそのものは保存せず、SESSION_SECRETによるHMAC-SHA256
// ダイジェストをキーとして保持するため、ストアの内容が漏れても
// 有効なCookie値は復元できない。
package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/minpost/internal/model"
)

// tokenBytes はトークンのエントロピー（256ビット）。
// 仕様の最低要件128ビットを満たす。
const tokenBytes = 32

// Store はトークンからセッションへのマッピングを保持する。
// 全リクエストから共有されるため、mapへのアクセスはRWMutexで保護する。
// ロック中に行うのはmap操作のみで、bcrypt等の重い処理は含めない。
type Store struct {
	mu       sync.RWMutex
	sessions map[string]model.Session

	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStore はStoreを生成する。
// secretはCookieトークンのダイジェスト計算に使用する鍵。
// ttlはセッションの有効期間（仕様デフォルトは7日）。
func NewStore(secret string, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]model.Session),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// digest はトークンのHMAC-SHA256ダイジェストをmapキー形式で返す。
func (s *Store) digest(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
}

// Create は新しいセッションを作成し、クライアントへ渡すトークンを返す。
// トークンは暗号論的乱数から生成され、ログインのたびに新規発行される。
// ユーザーごとのセッション索引は持たないため、同一ユーザーの既存
// セッションはそれぞれの有効期限まで独立して有効のまま残る。
func (s *Store) Create(userID string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	now := s.now()
	sess := model.Session{
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[s.digest(token)] = sess
	s.mu.Unlock()

	return token, nil
}

// Resolve はトークンに対応するユーザーIDを返す。
// 未知のトークンと期限切れのトークンは呼び出し側から区別できない
// （どちらもfalseを返す）。期限切れエントリの削除はここでは行わず、
// 定期的なPruneExpiredに任せる。
func (s *Store) Resolve(token string) (string, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[s.digest(token)]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}
	if !s.now().Before(sess.ExpiresAt) {
		return "", false
	}
	return sess.UserID, true
}

// Destroy はトークンに対応するセッションを削除する。
// 冪等であり、未知のトークンに対しては何もしない。
// 削除後にそのトークンが再びユーザーに解決されることはない。
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, s.digest(token))
	s.mu.Unlock()
}

// PruneExpired はnow時点で期限切れのセッションを削除し、削除件数を返す。
// クリーンアップワーカーから定期的に呼び出される。
func (s *Store) PruneExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// Len は保持中のセッション数を返す（期限切れ未掃除分を含む）。
// メトリクスのゲージ用。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// expireNow はテスト用に指定トークンの有効期限を過去に書き換える。
func (s *Store) expireNow(token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.digest(token)
	if sess, ok := s.sessions[key]; ok {
		sess.ExpiresAt = now.Add(-time.Second)
		s.sessions[key] = sess
	}
}
