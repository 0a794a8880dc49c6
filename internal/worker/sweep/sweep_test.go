package sweep

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// Pruner インターフェースに対するモック実装
type mockPruner struct {
	mu      sync.Mutex
	calls   int
	removed int
}

func (m *mockPruner) PruneExpired(_ time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.removed
}

func (m *mockPruner) Len() int {
	return 0
}

func (m *mockPruner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewSweeper_FallsBackToDefaultInterval(t *testing.T) {
	var buf bytes.Buffer
	s := NewSweeper(&mockPruner{}, newTestLogger(&buf), 0)

	if s.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", s.interval)
	}
}

func TestSweeper_RunOnce(t *testing.T) {
	var buf bytes.Buffer
	pruner := &mockPruner{removed: 3}
	s := NewSweeper(pruner, newTestLogger(&buf), time.Hour)

	removed := s.RunOnce()

	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if pruner.callCount() != 1 {
		t.Errorf("PruneExpired calls = %d, want 1", pruner.callCount())
	}
	if !strings.Contains(buf.String(), "session sweep completed") {
		t.Error("completion log not written")
	}
}

func TestSweeper_RunOnce_NothingToRemove(t *testing.T) {
	var buf bytes.Buffer
	s := NewSweeper(&mockPruner{removed: 0}, newTestLogger(&buf), time.Hour)

	if removed := s.RunOnce(); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestSweeper_Start_StopsOnContextCancel(t *testing.T) {
	var buf bytes.Buffer
	pruner := &mockPruner{}
	s := NewSweeper(pruner, newTestLogger(&buf), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	// 何回かtickさせてから停止する
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after context cancellation")
	}

	if pruner.callCount() == 0 {
		t.Error("PruneExpired was never called while running")
	}
	if !strings.Contains(buf.String(), "session sweeper stopped") {
		t.Error("stop log not written")
	}
}
