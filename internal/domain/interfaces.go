package domain

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"otchetnik/internal/models"
)

// TelegramSender is the raw Bot API surface the application depends on.
// *bot.BotWrapper satisfies it in production; tests substitute mocks.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetMe() (tgbotapi.User, error)
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// TelegramService adds the message-level helpers handlers actually use on
// top of the raw sender.
type TelegramService interface {
	TelegramSender
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
}

// TaskSource yields the task rows a report is built from.
type TaskSource interface {
	ReadTasks(ctx context.Context) ([]models.TaskRecord, error)
}

// ReportSender builds and delivers a report to a chat. The origin tag
// ("command" or "schedule") only feeds logs and metrics.
type ReportSender interface {
	SendReport(ctx context.Context, chatID int64, origin string) error
}
