package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"otchetnik/internal/config"
	"otchetnik/internal/google"
	"otchetnik/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTelegram struct {
	plain    []string
	html     []string
	htmlErr  error
	plainErr error
	stopped  int
}

func (m *mockTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return tgbotapi.Message{}, nil
}

func (m *mockTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	if m.plainErr != nil {
		return tgbotapi.Message{}, m.plainErr
	}
	m.plain = append(m.plain, text)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegram) SendHTML(chatID int64, text string) (tgbotapi.Message, error) {
	if m.htmlErr != nil {
		return tgbotapi.Message{}, m.htmlErr
	}
	m.html = append(m.html, text)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegram) GetMe() (tgbotapi.User, error) {
	return tgbotapi.User{UserName: "otchetnik_bot"}, nil
}

func (m *mockTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

func (m *mockTelegram) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "otchetnik_bot"}
}

func (m *mockTelegram) StopReceivingUpdates() {
	m.stopped++
}

type mockTasks struct {
	records []models.TaskRecord
	err     error
	calls   int
}

func (m *mockTasks) ReadTasks(ctx context.Context) ([]models.TaskRecord, error) {
	m.calls++
	return m.records, m.err
}

func testConfig(access config.AccessConfig) *config.Config {
	return &config.Config{
		Access: access,
		Report: config.ReportConfig{
			IntroText: "Коллеги, подготовил еженедельный отчет",
		},
		Location: time.UTC,
	}
}

func newTestBot(t *testing.T, cfg *config.Config, tg *mockTelegram, tasks *mockTasks) *Bot {
	t.Helper()
	b, err := NewBot(tg, cfg, tasks, nil, nil, nil)
	require.NoError(t, err)
	return b
}

func commandUpdate(command string, chatID, userID int64) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: command,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: chatID},
		},
	}
}

func TestReportCommandDelivers(t *testing.T) {
	tg := &mockTelegram{}
	tasks := &mockTasks{records: []models.TaskRecord{
		{Title: "Текущая задача", Status: models.StatusInProgress},
	}}
	b := newTestBot(t, testConfig(config.AccessConfig{}), tg, tasks)

	b.handleMessage(context.Background(), commandUpdate("/otchet", -100500, 111))

	assert.Equal(t, 1, tasks.calls)
	require.Len(t, tg.html, 1)
	assert.Contains(t, tg.html[0], "Текущая задача")
	// вступление уходит отдельным обычным сообщением
	require.Len(t, tg.plain, 1)
	assert.Equal(t, "Коллеги, подготовил еженедельный отчет", tg.plain[0])
}

func TestReportCommandDeniedUser(t *testing.T) {
	tg := &mockTelegram{}
	tasks := &mockTasks{}
	b := newTestBot(t, testConfig(config.AccessConfig{AllowedUserIDs: []int64{111}}), tg, tasks)

	b.handleMessage(context.Background(), commandUpdate("/otchet", -100500, 222))

	assert.Equal(t, 0, tasks.calls, "denied command must not touch the sheet")
	assert.Empty(t, tg.html)
	require.Len(t, tg.plain, 1)
	assert.Equal(t, models.MsgAccessDenied, tg.plain[0])
}

func TestReportCommandDeniedChat(t *testing.T) {
	tg := &mockTelegram{}
	tasks := &mockTasks{}
	b := newTestBot(t, testConfig(config.AccessConfig{AllowedChatIDs: []int64{-1}}), tg, tasks)

	b.handleMessage(context.Background(), commandUpdate("/otchet", -2, 111))

	assert.Equal(t, 0, tasks.calls)
	require.Len(t, tg.plain, 1)
	assert.Equal(t, models.MsgAccessDenied, tg.plain[0])
}

func TestReportCommandSheetFailure(t *testing.T) {
	tg := &mockTelegram{}
	tasks := &mockTasks{err: fmt.Errorf("%w: quota exceeded", google.ErrSheetRead)}
	b := newTestBot(t, testConfig(config.AccessConfig{}), tg, tasks)

	b.handleMessage(context.Background(), commandUpdate("/otchet", -100500, 111))

	assert.Empty(t, tg.html, "nothing is delivered when the sheet fails")
	require.Len(t, tg.plain, 1)
	assert.Equal(t, models.MsgReportFailed, tg.plain[0])
}

func TestReportDeliveryFailure(t *testing.T) {
	old := sendRetry
	sendRetry.InitialDelay = time.Millisecond
	defer func() { sendRetry = old }()

	tg := &mockTelegram{htmlErr: errors.New("bad gateway")}
	tasks := &mockTasks{}
	b := newTestBot(t, testConfig(config.AccessConfig{}), tg, tasks)

	err := b.SendReport(context.Background(), -100500, "command")

	assert.ErrorIs(t, err, ErrDelivery)
}

func TestChatIDCommand(t *testing.T) {
	tg := &mockTelegram{}
	// чат не в списке, но /chatid проверяет только пользователя
	cfg := testConfig(config.AccessConfig{
		AllowedChatIDs: []int64{-1},
		AllowedUserIDs: []int64{111},
	})
	b := newTestBot(t, cfg, tg, &mockTasks{})

	b.handleMessage(context.Background(), commandUpdate("/chatid", -100500, 111))

	require.Len(t, tg.plain, 1)
	assert.Equal(t, "Chat ID: -100500", tg.plain[0])
}

func TestChatIDCommandDenied(t *testing.T) {
	tg := &mockTelegram{}
	b := newTestBot(t, testConfig(config.AccessConfig{AllowedUserIDs: []int64{111}}), tg, &mockTasks{})

	b.handleMessage(context.Background(), commandUpdate("/chatid", -100500, 222))

	require.Len(t, tg.plain, 1)
	assert.Equal(t, models.MsgAccessDenied, tg.plain[0])
}

func TestNetdiagCommandDenied(t *testing.T) {
	tg := &mockTelegram{}
	b := newTestBot(t, testConfig(config.AccessConfig{AllowedUserIDs: []int64{111}}), tg, &mockTasks{})

	b.handleMessage(context.Background(), commandUpdate("/netdiag", -100500, 222))

	require.Len(t, tg.plain, 1)
	assert.Equal(t, models.MsgAccessDenied, tg.plain[0])
}

func TestNonCommandIgnored(t *testing.T) {
	tg := &mockTelegram{}
	tasks := &mockTasks{}
	b := newTestBot(t, testConfig(config.AccessConfig{}), tg, tasks)

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: "просто сообщение",
			From: &tgbotapi.User{ID: 111},
			Chat: &tgbotapi.Chat{ID: -100500},
		},
	}
	b.handleMessage(context.Background(), update)

	assert.Equal(t, 0, tasks.calls)
	assert.Empty(t, tg.plain)
	assert.Empty(t, tg.html)
}

func TestStopClosesUpdateChannel(t *testing.T) {
	tg := &mockTelegram{}
	b := newTestBot(t, testConfig(config.AccessConfig{}), tg, &mockTasks{})

	b.Stop()

	assert.Equal(t, 1, tg.stopped)

	var nilBot *Bot
	nilBot.Stop() // не должно паниковать
}

func TestUnknownCommandIgnored(t *testing.T) {
	tg := &mockTelegram{}
	b := newTestBot(t, testConfig(config.AccessConfig{}), tg, &mockTasks{})

	b.handleMessage(context.Background(), commandUpdate("/start", -100500, 111))

	assert.Empty(t, tg.plain)
	assert.Empty(t, tg.html)
}
