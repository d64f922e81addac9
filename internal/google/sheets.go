package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"otchetnik/internal/models"
)

// ErrSheetRead wraps every Sheets read failure so handlers can map it to a
// user-facing message without inspecting Google API error types.
var ErrSheetRead = errors.New("sheet read failed")

type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsService(credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	// Создаем JWT конфигурацию (отчету достаточно read-only доступа)
	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// ReadTasks читает все строки листа и превращает их в записи задач.
// Первая строка считается заголовком; колонки находятся по названиям, так
// что их порядок в таблице может меняться.
func (s *SheetsService) ReadTasks(ctx context.Context) ([]models.TaskRecord, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSheetRead, err)
	}

	return parseRecords(resp.Values), nil
}

// columnIndex maps header titles to their column positions. Unknown headers
// are ignored; a missing column leaves index -1 so lookups come back empty.
type columnIndex struct {
	title    int
	assignee int
	link     int
	status   int
	closedAt int
}

func indexColumns(header []interface{}) columnIndex {
	idx := columnIndex{title: -1, assignee: -1, link: -1, status: -1, closedAt: -1}
	for i, cell := range header {
		switch strings.TrimSpace(cellString(cell)) {
		case models.ColumnTitle:
			idx.title = i
		case models.ColumnAssignee:
			idx.assignee = i
		case models.ColumnLink:
			idx.link = i
		case models.ColumnStatus:
			idx.status = i
		case models.ColumnClosedAt:
			idx.closedAt = i
		}
	}
	return idx
}

func parseRecords(values [][]interface{}) []models.TaskRecord {
	if len(values) == 0 {
		return nil
	}

	idx := indexColumns(values[0])
	var records []models.TaskRecord
	for _, row := range values[1:] {
		rec := models.TaskRecord{
			Title:    cellAt(row, idx.title),
			Assignee: cellAt(row, idx.assignee),
			Link:     cellAt(row, idx.link),
			Status:   cellAt(row, idx.status),
		}
		if rec.Title == "" {
			continue
		}

		// Кривая дата закрытия не валит отчет: задача просто не попадет
		// в секцию «Выполнено»
		if raw := cellAt(row, idx.closedAt); raw != "" {
			if ts, err := time.Parse(models.CloseDateLayout, raw); err == nil {
				rec.ClosedAt = ts
				rec.HasClosedAt = true
			}
		}

		records = append(records, rec)
	}
	return records
}

func cellAt(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(cellString(row[idx]))
}

func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
