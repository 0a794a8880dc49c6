// Package sweep は期限切れセッションの定期削除ジョブを提供する。
// セッションストアは参照時に期限切れを返さないが、エントリ自体は
// 残り続けるため、このジョブが一定間隔でまとめて回収する。
package sweep

import (
	"context"
	"log/slog"
	"time"
)

// Pruner はセッションストアの期限切れ削除を抽象化するインターフェース。
type Pruner interface {
	PruneExpired(now time.Time) int
	Len() int
}

// Sweeper は期限切れセッションを定期的に削除するジョブ。
// 冪等であり、削除対象がない実行でもエラーにならない。
type Sweeper struct {
	store    Pruner
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSweeper は新しいSweeperを生成する。
// intervalが0以下の場合は1時間にフォールバックする。
func NewSweeper(store Pruner, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// RunOnce は期限切れセッションを1回削除し、削除件数を返す。
func (s *Sweeper) RunOnce() int {
	start := s.now()
	removed := s.store.PruneExpired(start)

	s.logger.Info("session sweep completed",
		slog.Int("removed", removed),
		slog.Int("remaining", s.store.Len()),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return removed
}

// Start はコンテキストがキャンセルされるまで一定間隔でRunOnceを実行する。
// 呼び出し側のゴルーチンをブロックするため、通常はgoで起動する。
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started",
		slog.String("interval", s.interval.String()),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}
