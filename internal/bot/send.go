package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"otchetnik/internal/models"
	"otchetnik/internal/report"
	"otchetnik/internal/worker"

	"github.com/rs/zerolog"
)

// ErrDelivery means not a single report chunk reached the chat.
var ErrDelivery = errors.New("report delivery failed")

var sendRetry = worker.RetryPolicy{
	MaxAttempts:   models.SendRetryAttempts,
	InitialDelay:  time.Second,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2,
}

// SendReport reads the sheet, builds the report and delivers it to chatID.
// The origin label ("command" or "schedule") feeds logs and metrics only.
func (b *Bot) SendReport(ctx context.Context, chatID int64, origin string) error {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = b.logger
	}

	readStart := time.Now()
	records, err := b.tasks.ReadTasks(ctx)
	if b.metrics != nil {
		b.metrics.SheetReadDuration.Observe(time.Since(readStart).Seconds())
	}
	if err != nil {
		return err
	}

	body := b.builder.Build(records, time.Now())
	chunks := report.SplitForDelivery(body, models.ReportChunkSize)

	if intro := b.config.Intro(); intro != "" {
		if err := sendRetry.Do(ctx, func() error {
			_, err := b.tgService.SendMessage(chatID, intro)
			return err
		}); err != nil {
			l.Warn().Err(err).Int64("chat_id", chatID).Msg("Intro message failed")
		}
	}

	delivered := 0
	for i, chunk := range chunks {
		err := sendRetry.Do(ctx, func() error {
			_, err := b.tgService.SendHTML(chatID, chunk)
			return err
		})
		if err != nil {
			l.Error().Err(err).
				Int64("chat_id", chatID).
				Int("chunk", i+1).
				Int("chunks", len(chunks)).
				Msg("Report chunk failed after retries")
			if b.metrics != nil {
				b.metrics.ReportChunksFailed.Inc()
			}
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return ErrDelivery
	}

	if delivered < len(chunks) {
		// частичная доставка: чат должен знать, что отчет неполный
		b.sendMessage(chatID, fmt.Sprintf(models.MsgReportPartialFmt, len(chunks)-delivered, len(chunks)))
	}

	if b.metrics != nil {
		b.metrics.ReportsSent.WithLabelValues(origin).Inc()
	}
	l.Info().
		Int64("chat_id", chatID).
		Str("origin", origin).
		Int("chunks", len(chunks)).
		Int("delivered", delivered).
		Msg("Report sent")
	return nil
}
