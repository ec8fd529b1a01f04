package scheduler

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"tokenhub/internal/config"
	"tokenhub/internal/db"
	"tokenhub/internal/logger"
	"tokenhub/internal/model"
)

func TestScheduler(t *testing.T) {
	svc, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	stale := model.Token{
		UserID: 1, Name: "stale", Key: "k-stale",
		DailyQuotaLimit: 100,
		DayWindowStart:  time.Now().Add(-25 * time.Hour).Unix(),
		DayUsedQuota:    80,
	}
	if err := svc.CreateToken(&stale); err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	s := NewScheduler(svc, logger.NewWithWriter(io.Discard, false))
	if err := s.Start(); err != nil {
		t.Fatalf("failed to start scheduler: %v", err)
	}
	defer s.Stop()

	// The cron trigger itself is not worth waiting an hour for; run the job
	// directly.
	s.ResetDailyUsage()

	updated, err := svc.GetToken(stale.ID, 1)
	if err != nil {
		t.Fatalf("failed to reload token: %v", err)
	}
	if updated.DayUsedQuota != 0 {
		t.Errorf("Expected day usage to be 0, but got %d", updated.DayUsedQuota)
	}
	if updated.DayWindowStart == stale.DayWindowStart {
		t.Error("Expected the daily window to have been rolled forward")
	}
}
