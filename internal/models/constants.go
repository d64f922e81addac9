package models

const (
	// StatusDone значение колонки "Статус" для выполненных задач
	StatusDone = "Выполнено"

	// StatusInProgress значение колонки "Статус" для задач в работе
	StatusInProgress = "В работе"
)

const (
	ParseModeHTML = "HTML"
)

const (
	// Заголовки колонок исходного листа
	ColumnTitle    = "Задача"
	ColumnAssignee = "Исполнитель"
	ColumnLink     = "Ссылка"
	ColumnStatus   = "Статус"
	ColumnClosedAt = "Дата закрытия"

	// CloseDateLayout формат даты в колонке "Дата закрытия"
	CloseDateLayout = "02.01.2006"
)

const (
	// ReportChunkSize максимальная длина одной части отчета
	ReportChunkSize = 3900

	// SendRetryAttempts количество попыток отправки одного сообщения
	SendRetryAttempts = 3

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений, секунды
	RateLimitWindow = 60
)

const (
	// MsgAccessDenied ответ на команду без прав
	MsgAccessDenied = "Недостаточно прав для выполнения команды."

	// MsgReportFailed ответ при ошибке формирования отчета
	MsgReportFailed = "Не удалось сформировать отчет. Проверьте логи сервиса."

	// MsgReportPartialFmt предупреждение о неполной доставке отчета,
	// аргументы: не отправлено, всего частей
	MsgReportPartialFmt = "⚠️ Отчет доставлен не полностью: %d из %d сообщений не отправлено."

	// MsgRateLimited ответ на слишком частые сообщения
	MsgRateLimited = "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного."

	// MsgNetdiagRunning уведомление о запуске диагностики
	MsgNetdiagRunning = "Запускаю сетевую диагностику..."

	// MsgNetdiagFailed ответ при ошибке диагностики
	MsgNetdiagFailed = "Не удалось выполнить сетевую диагностику."
)
