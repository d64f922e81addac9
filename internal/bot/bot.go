package bot

import (
	"context"
	"os"
	"time"

	"otchetnik/internal/access"
	"otchetnik/internal/config"
	"otchetnik/internal/domain"
	"otchetnik/internal/models"
	"otchetnik/internal/netdiag"
	"otchetnik/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tgService domain.TelegramService
	config    *config.Config
	policy    access.Policy
	tasks     domain.TaskSource
	builder   *report.Builder
	prober    *netdiag.Prober
	metrics   *Metrics
	limiter   *rateLimiter
	logger    *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	tasks domain.TaskSource,
	prober *netdiag.Prober,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService: tgService,
		config:    cfg,
		policy:    access.NewPolicy(cfg.Access),
		tasks:     tasks,
		builder:   report.NewBuilder(cfg.Location),
		prober:    prober,
		metrics:   metrics,
		limiter:   newRateLimiter(),
		logger:    logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		if update.Message == nil {
			return
		}

		userID := int64(0)
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}

		if userID != 0 && !b.limiter.allow(userID) {
			l.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
			b.sendMessage(update.Message.Chat.ID, models.MsgRateLimited)
			return
		}

		b.handleMessage(updateCtx, update)
	})
}
