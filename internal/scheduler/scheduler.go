package scheduler

import (
	"log/slog"
	"time"

	"tokenhub/internal/db"
	"tokenhub/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic maintenance jobs of the token service.
type Scheduler struct {
	db     db.Service
	logger *slog.Logger
	c      *cron.Cron
}

func NewScheduler(dbService db.Service, log *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     dbService,
		logger: logger.Component(log, "scheduler"),
		c:      cron.New(),
	}
}

// Start registers the hourly daily-window sweep. Windows roll exactly 24h
// after they opened, so the sweep runs more often than once a day.
func (s *Scheduler) Start() error {
	_, err := s.c.AddFunc("@hourly", s.ResetDailyUsage)
	if err != nil {
		return err
	}
	s.c.Start()
	return nil
}

// ResetDailyUsage rolls every elapsed daily consumption window.
func (s *Scheduler) ResetDailyUsage() {
	if err := s.db.ResetAllDailyUsage(time.Now().Unix()); err != nil {
		s.logger.Error("failed to reset daily usage windows", "error", err)
		return
	}
	s.logger.Info("daily usage windows swept")
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
