package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otchetnik/internal/bot"
	"otchetnik/internal/config"
	"otchetnik/internal/google"
	"otchetnik/internal/logging"
	"otchetnik/internal/metrics"
	"otchetnik/internal/netdiag"
	"otchetnik/internal/scheduler"
	"otchetnik/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	for _, item := range cfg.Access.Invalid {
		logger.Warn().Str("entry", item).Msg("Ignoring invalid allow-list entry")
	}
	for _, item := range cfg.InvalidEnv {
		logger.Warn().Str("entry", item).Msg("Ignoring invalid numeric env value")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsService, err := initGoogleSheets(ctx, cfg, &logger)
	if err != nil {
		return err
	}

	metrics.StartServer(cfg.Metrics.Addr, &logger)

	return startBot(ctx, cfg, sheetsService, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*google.SheetsService, error) {
	sheetsSvc, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.SpreadsheetID,
		cfg.Google.SheetName,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil, err
	}

	// Недоступная таблица на старте не фатальна: чат получит понятную
	// ошибку при первом /otchet
	testCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := sheetsSvc.TestConnection(testCtx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed")
		if email, emailErr := sheetsSvc.GetServiceAccountEmail(cfg.Google.CredentialsFile); emailErr == nil {
			logger.Warn().Str("service_account", email).Msg("Check that the spreadsheet is shared with the service account")
		}
	} else {
		logger.Info().Msg("Google Sheets service initialized successfully")
	}

	return sheetsSvc, nil
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	sheetsService *google.SheetsService,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	prober := netdiag.NewProber(
		cfg.Netdiag.Host,
		cfg.Netdiag.HTTPAttempts,
		time.Duration(cfg.Netdiag.TimeoutSec)*time.Second,
	)

	telegramBot, err := bot.NewBot(tgService, cfg, sheetsService, prober, bot.NewMetrics(), logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	sched := scheduler.New(cfg, telegramBot, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	logger.Info().Msg("Shutdown complete.")
	return nil
}
