package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"otchetnik/internal/config"
	"otchetnik/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler fires the weekly report on a cron schedule in the report
// timezone.
type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.Config
	sender domain.ReportSender
	logger *zerolog.Logger
}

func New(cfg *config.Config, sender domain.ReportSender, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(cfg.Location)),
		cfg:    cfg,
		sender: sender,
		logger: logger,
	}
}

// Start registers the cron entry and launches the scheduler. A missing or
// malformed report chat disables the schedule without failing startup.
func (s *Scheduler) Start() error {
	if _, ok := s.cfg.ScheduledChatID(); !ok {
		if strings.TrimSpace(s.cfg.Report.ChatID) == "" {
			s.logger.Info().Msg("REPORT_CHAT_ID is not set, scheduled report disabled")
		} else {
			s.logger.Warn().
				Str("chat_id", s.cfg.Report.ChatID).
				Msg("REPORT_CHAT_ID is not a valid chat id, scheduled report disabled")
		}
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Report.CronSpec, s.fire); err != nil {
		return fmt.Errorf("register report schedule %q: %w", s.cfg.Report.CronSpec, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("cron", s.cfg.Report.CronSpec).
		Str("timezone", s.cfg.Report.Timezone).
		Msg("Report schedule started")
	return nil
}

// fire re-validates the target chat on every run: the config may point at
// a chat that became malformed through a YAML reload, and a scheduled run
// must degrade to a logged no-op instead of crashing.
func (s *Scheduler) fire() {
	chatID, ok := s.cfg.ScheduledChatID()
	if !ok {
		s.logger.Warn().
			Str("chat_id", s.cfg.Report.ChatID).
			Msg("Scheduled report skipped: no valid chat id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	l := s.logger.With().Str("origin", "schedule").Logger()
	ctx = l.WithContext(ctx)

	if err := s.sender.SendReport(ctx, chatID, "schedule"); err != nil {
		l.Error().Err(err).Int64("chat_id", chatID).Msg("Scheduled report failed")
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
