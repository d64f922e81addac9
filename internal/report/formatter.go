package report

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"otchetnik/internal/models"
)

// Builder renders task records into an HTML report body. All task-derived
// text goes through escaping; links are rendered only when SafeHref
// accepts them.
type Builder struct {
	location *time.Location
}

func NewBuilder(location *time.Location) *Builder {
	if location == nil {
		location = time.UTC
	}
	return &Builder{location: location}
}

var monthNames = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// escapeText escapes task text for an HTML message body.
func escapeText(text string) string {
	return html.EscapeString(text)
}

// SafeHref returns the escaped href when the URL uses http or https and
// has a host; anything else is rejected and rendered as plain text.
func SafeHref(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if parsed.Host == "" {
		return "", false
	}
	return html.EscapeString(raw), true
}

// lastWeekDates returns the previous Mon-Sun week around today.
func lastWeekDates(today time.Time) (time.Time, time.Time) {
	offset := (int(today.Weekday()) + 6) % 7 // Monday = 0
	lastMonday := today.AddDate(0, 0, -(offset + 7))
	return lastMonday, lastMonday.AddDate(0, 0, 6)
}

// currentWeekDates returns the current Mon-Sun week around today.
func currentWeekDates(today time.Time) (time.Time, time.Time) {
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

func formatDateRange(start, end time.Time) string {
	if start.Month() == end.Month() {
		return fmt.Sprintf("%d-%d %s", start.Day(), end.Day(), monthNames[start.Month()-1])
	}
	return fmt.Sprintf("%d %s - %d %s",
		start.Day(), monthNames[start.Month()-1],
		end.Day(), monthNames[end.Month()-1])
}

// taskLine renders one bullet: escaped title, optional safe link, optional
// escaped assignee.
func taskLine(rec models.TaskRecord) string {
	title := escapeText(strings.TrimSpace(rec.Title))

	var line string
	if link := strings.TrimSpace(rec.Link); link != "" {
		if href, ok := SafeHref(link); ok {
			line = fmt.Sprintf("• <a href=\"%s\">%s</a>", href, title)
		} else {
			line = "• " + title
		}
	} else {
		line = "• " + title
	}

	if assignee := strings.TrimSpace(rec.Assignee); assignee != "" {
		line += " — " + escapeText(assignee)
	}
	return line
}

// Build renders the full report body for the given moment. Records with an
// empty title are skipped; an empty record set still produces both headed
// sections with placeholder bullets.
func (b *Builder) Build(records []models.TaskRecord, now time.Time) string {
	today := now.In(b.location)
	doneStart, doneEnd := lastWeekDates(today)
	progressStart, progressEnd := currentWeekDates(today)

	var doneTasks, inProgressTasks []string
	for _, rec := range records {
		if strings.TrimSpace(rec.Title) == "" {
			continue
		}

		if rec.Status == models.StatusDone {
			// done counts only when closed inside the previous week
			if rec.HasClosedAt && withinDay(rec.ClosedAt, doneStart, doneEnd) {
				doneTasks = append(doneTasks, taskLine(rec))
			}
			continue
		}
		// все остальные статусы считаются работой в процессе
		inProgressTasks = append(inProgressTasks, taskLine(rec))
	}

	var lines []string
	lines = append(lines, "<b>"+escapeText(fmt.Sprintf("✅ Выполнено (%s)", formatDateRange(doneStart, doneEnd)))+"</b>")
	if len(doneTasks) > 0 {
		lines = append(lines, doneTasks...)
	} else {
		lines = append(lines, "• —")
	}

	lines = append(lines, "")
	lines = append(lines, "<b>"+escapeText(fmt.Sprintf("🔄 В работе (%s)", formatDateRange(progressStart, progressEnd)))+"</b>")
	if len(inProgressTasks) > 0 {
		lines = append(lines, inProgressTasks...)
	} else {
		lines = append(lines, "• —")
	}

	return strings.Join(lines, "\n")
}

// withinDay compares by calendar date so time-of-day never excludes a
// boundary day.
func withinDay(t, start, end time.Time) bool {
	day := func(v time.Time) time.Time {
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	}
	d := day(t)
	return !d.Before(day(start)) && !d.After(day(end))
}
