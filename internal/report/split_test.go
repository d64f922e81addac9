package report

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextStaysWhole(t *testing.T) {
	text := "<b>✅ Выполнено</b>\n• задача"

	chunks := SplitForDelivery(text, 3900)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitRepeatsSectionHeader(t *testing.T) {
	var lines []string
	lines = append(lines, "<b>✅ Выполнено</b>")
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("• задача номер %d с довольно длинным описанием", i))
	}
	text := strings.Join(lines, "\n")

	chunks := SplitForDelivery(text, 400)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 400, "chunk %d over limit", i)
		assert.True(t, strings.HasPrefix(chunk, "<b>✅ Выполнено</b>\n"),
			"chunk %d lost its header", i)
	}

	// every entry survives across the chunks
	joined := strings.Join(chunks, "\n")
	for i := 0; i < 40; i++ {
		assert.Contains(t, joined, fmt.Sprintf("• задача номер %d ", i))
	}
}

func TestSplitKeepsBothSections(t *testing.T) {
	done := []string{"<b>✅ Выполнено</b>"}
	for i := 0; i < 20; i++ {
		done = append(done, fmt.Sprintf("• закрытая %d", i))
	}
	progress := []string{"<b>🔄 В работе</b>"}
	for i := 0; i < 20; i++ {
		progress = append(progress, fmt.Sprintf("• текущая %d", i))
	}
	text := strings.Join(done, "\n") + "\n\n" + strings.Join(progress, "\n")

	chunks := SplitForDelivery(text, 200)

	require.Greater(t, len(chunks), 1)
	var sawDone, sawProgress bool
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200)
		switch {
		case strings.HasPrefix(chunk, "<b>✅ Выполнено</b>"):
			sawDone = true
		case strings.HasPrefix(chunk, "<b>🔄 В работе</b>"):
			sawProgress = true
		default:
			t.Fatalf("chunk without a known header: %q", chunk)
		}
	}
	assert.True(t, sawDone)
	assert.True(t, sawProgress)
}

func TestSplitHardWrapsOversizedEntry(t *testing.T) {
	header := "<b>✅ Выполнено</b>"
	entry := "• " + strings.Repeat("х", 500)
	text := header + "\n" + entry

	// кириллица двухбайтовая: проверяем и лимиты, не кратные ширине руны
	for _, limit := range []int{119, 120, 121} {
		chunks := SplitForDelivery(text, limit)

		require.Greater(t, len(chunks), 1)
		for i, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), limit, "limit %d chunk %d", limit, i)
			assert.True(t, strings.HasPrefix(chunk, header+"\n"), "limit %d chunk %d", limit, i)
			assert.True(t, utf8.ValidString(chunk), "limit %d chunk %d contains invalid UTF-8", limit, i)
		}
		assert.Equal(t, entry, reassemble(chunks, header), "limit %d loses text", limit)
	}
}

// reassemble strips the repeated header from every chunk and concatenates
// the remaining entry text.
func reassemble(chunks []string, header string) string {
	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(strings.TrimPrefix(chunk, header+"\n"))
	}
	return b.String()
}

func TestSplitFallbackKeepsValidUTF8(t *testing.T) {
	// no headers: plain packing must still cut on rune boundaries
	text := strings.Repeat("ф", 40)

	chunks := SplitForDelivery(text, 25)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 25)
		assert.True(t, utf8.ValidString(chunk), "chunk %d contains invalid UTF-8", i)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitFallbackWithoutSections(t *testing.T) {
	// no blank-line structure and no headers: plain greedy packing
	text := strings.Repeat("a", 50)

	chunks := SplitForDelivery(text, 20)

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("a", 20), chunks[0])
	assert.Equal(t, strings.Repeat("a", 10), chunks[2])
}
