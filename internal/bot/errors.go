package bot

import (
	"errors"

	"otchetnik/internal/google"
	"otchetnik/internal/models"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, google.ErrSheetRead) {
		return models.MsgReportFailed
	}

	if errors.Is(err, ErrDelivery) {
		return "❌ Не удалось отправить отчет в чат. Попробуйте позже."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Попробуйте позже."
}
