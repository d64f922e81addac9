package bot

import (
	"context"
	"fmt"
	"time"

	"otchetnik/internal/models"
	"otchetnik/internal/netdiag"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	l := zerolog.Ctx(ctx)

	var userID int64
	if message.From != nil {
		userID = message.From.ID
	}
	chatID := message.Chat.ID

	if !message.IsCommand() {
		return
	}

	command := message.Command()
	l.Debug().
		Int64("user_id", userID).
		Int64("chat_id", chatID).
		Str("command", command).
		Msg("Handling command")

	if b.metrics != nil {
		b.metrics.CommandsProcessed.WithLabelValues(command).Inc()
	}

	switch command {
	case "otchet":
		b.handleReportCommand(ctx, chatID, userID)
	case "chatid":
		b.handleChatIDCommand(ctx, chatID, userID)
	case "netdiag":
		b.handleNetdiagCommand(ctx, chatID, userID)
	}
}

func (b *Bot) handleReportCommand(ctx context.Context, chatID, userID int64) {
	l := zerolog.Ctx(ctx)

	if !b.policy.Allow(chatID, userID) {
		l.Warn().Int64("user_id", userID).Int64("chat_id", chatID).Msg("Report command denied")
		b.sendMessage(chatID, models.MsgAccessDenied)
		return
	}

	if err := b.SendReport(ctx, chatID, "command"); err != nil {
		l.Error().Err(err).Int64("chat_id", chatID).Msg("Report delivery failed")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
		b.sendMessage(chatID, b.getErrorMessage(err))
	}
}

// handleChatIDCommand отвечает идентификатором чата. Команда проверяет
// только список пользователей: ей пользуются как раз для того, чтобы
// узнать ID еще не разрешенного чата.
func (b *Bot) handleChatIDCommand(ctx context.Context, chatID, userID int64) {
	if !b.policy.AllowUser(userID) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", userID).Msg("Chat ID command denied")
		b.sendMessage(chatID, models.MsgAccessDenied)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("Chat ID: %d", chatID))
}

func (b *Bot) handleNetdiagCommand(ctx context.Context, chatID, userID int64) {
	l := zerolog.Ctx(ctx)

	if !b.policy.Allow(chatID, userID) {
		l.Warn().Int64("user_id", userID).Int64("chat_id", chatID).Msg("Netdiag command denied")
		b.sendMessage(chatID, models.MsgAccessDenied)
		return
	}

	b.sendMessage(chatID, models.MsgNetdiagRunning)

	summary := b.prober.Run(ctx)
	summary.AddStage(b.probeGetMe())

	if _, err := b.tgService.SendMessage(chatID, summary.Format()); err != nil {
		l.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send netdiag summary")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
		b.sendMessage(chatID, models.MsgNetdiagFailed)
	}
}

// probeGetMe is the final diagnostic stage: a real Bot API call through
// the same client the bot uses for everything else.
func (b *Bot) probeGetMe() netdiag.Stage {
	stage := netdiag.Stage{Name: "Bot API getMe"}

	start := time.Now()
	user, err := b.tgService.GetMe()
	stage.Duration = time.Since(start)

	if err != nil {
		stage.Status = netdiag.StatusFail
		stage.Detail = err.Error()
		return stage
	}

	stage.Status = netdiag.StatusOK
	stage.Detail = "@" + user.UserName
	return stage
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
