package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Telegram TelegramConfig `yaml:"telegram"`
	Google   GoogleConfig   `yaml:"google"`
	Report   ReportConfig   `yaml:"report"`
	Access   AccessConfig   `yaml:"access"`
	Netdiag  NetdiagConfig  `yaml:"netdiag"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// Location разобранный Report.Timezone
	Location *time.Location `yaml:"-"`

	// InvalidEnv нечисловые значения числовых переменных окружения,
	// для предупреждений в логе при старте
	InvalidEnv []string `yaml:"-"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
}

type ReportConfig struct {
	// ChatID чат для отчета по расписанию; пустое значение отключает триггер
	ChatID        string `yaml:"chat_id"`
	IntroMentions string `yaml:"intro_mentions"`
	IntroText     string `yaml:"intro_text"`
	Timezone      string `yaml:"timezone"`
	// CronSpec строка расписания в таймзоне Timezone
	CronSpec string `yaml:"cron_spec"`
}

type AccessConfig struct {
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids"`
	// Invalid отброшенные при разборе элементы, для предупреждений в логе
	Invalid []string `yaml:"-"`
}

type NetdiagConfig struct {
	Host         string `yaml:"host"`
	HTTPAttempts int    `yaml:"http_attempts"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load собирает конфигурацию: .env, затем необязательный YAML (CONFIG_PATH),
// затем переменные окружения поверх. Окружение всегда имеет приоритет.
func Load() (*Config, error) {
	// .env файл необязателен
	_ = godotenv.Load(".env")

	var config Config

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Предварительная замена переменных окружения в YAML
		expandedData := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expandedData, &config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	loc, err := time.LoadLocation(config.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", config.Report.Timezone, err)
	}
	config.Location = loc

	return &config, nil
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.BotToken, "BOT_TOKEN")
	setString(&c.Google.SpreadsheetID, "SPREADSHEET_ID")
	setString(&c.Google.CredentialsFile, "CREDS_FILE")
	setString(&c.Google.SheetName, "SHEET_NAME")
	setString(&c.Report.ChatID, "REPORT_CHAT_ID")
	setString(&c.Report.IntroMentions, "INTRO_MENTIONS")
	setString(&c.Report.IntroText, "INTRO_TEXT")
	setString(&c.Report.Timezone, "REPORT_TIMEZONE")
	setString(&c.Report.CronSpec, "REPORT_CRON")
	setString(&c.Netdiag.Host, "NETDIAG_HOST")
	c.setInt(&c.Netdiag.HTTPAttempts, "NETDIAG_HTTP_ATTEMPTS")
	c.setInt(&c.Netdiag.TimeoutSec, "NETDIAG_TIMEOUT_SEC")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Logging.Output, "LOG_OUTPUT")
	setString(&c.Logging.FilePath, "LOG_FILE")
	setString(&c.Metrics.Addr, "METRICS_ADDR")

	if raw, ok := os.LookupEnv("ALLOWED_CHAT_IDS"); ok {
		c.Access.AllowedChatIDs = c.Access.parseIDList(raw)
	}
	if raw, ok := os.LookupEnv("ALLOWED_TG_USERS"); ok {
		c.Access.AllowedUserIDs = c.Access.parseIDList(raw)
	}
}

// parseIDList разбирает список идентификаторов через запятую; невалидные
// элементы не прерывают запуск, а копятся в Invalid для предупреждения.
func (a *AccessConfig) parseIDList(raw string) []int64 {
	var ids []int64
	for _, chunk := range strings.Split(raw, ",") {
		item := strings.TrimSpace(chunk)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			a.Invalid = append(a.Invalid, item)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.Google.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}
	if len(missing) > 0 {
		return errors.New("missing required env vars: " + strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "otchetnik"
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = "credentials.json"
	}
	if c.Google.SheetName == "" {
		c.Google.SheetName = "Список задач (2026)"
	}
	if c.Report.IntroText == "" {
		c.Report.IntroText = "Коллеги, подготовил еженедельный отчет"
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = "Europe/Moscow"
	}
	if c.Report.CronSpec == "" {
		// понедельник 15:00 в таймзоне отчета
		c.Report.CronSpec = "0 15 * * 1"
	}
	if c.Netdiag.Host == "" {
		c.Netdiag.Host = "api.telegram.org"
	}
	if c.Netdiag.HTTPAttempts < 1 {
		c.Netdiag.HTTPAttempts = 3
	}
	if c.Netdiag.TimeoutSec < 1 {
		c.Netdiag.TimeoutSec = 6
	}
}

// ScheduledChatID возвращает валидный чат для отчета по расписанию.
// Второе значение false, когда чат не задан или не является числом.
func (c *Config) ScheduledChatID() (int64, bool) {
	raw := strings.TrimSpace(c.Report.ChatID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Intro возвращает вступительную строку отчета или пустую строку.
func (c *Config) Intro() string {
	return strings.TrimSpace(strings.TrimSpace(c.Report.IntroMentions) + " " + strings.TrimSpace(c.Report.IntroText))
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// setInt разбирает числовую переменную окружения; нечисловое значение не
// прерывает запуск, а копится в InvalidEnv для предупреждения.
func (c *Config) setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		c.InvalidEnv = append(c.InvalidEnv, key+"="+v)
		return
	}
	*dst = n
}
