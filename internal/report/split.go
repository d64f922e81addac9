package report

import (
	"strings"
	"unicode/utf8"
)

// SplitForDelivery splits a report body into chunks no longer than limit,
// keeping whole sections together where possible and repeating the section
// header in every chunk so each message stays readable on its own.
func SplitForDelivery(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	sections := splitSections(text)
	if len(sections) == 0 {
		return splitLines(text, limit)
	}

	var chunks []string
	for _, section := range sections {
		title := section[0]
		entries := section[1:]
		if len(entries) == 0 {
			entries = []string{"• —"}
		}
		current := []string{title}

		for _, entry := range entries {
			candidate := strings.Join(append(append([]string{}, current...), entry), "\n")
			if len(candidate) <= limit {
				current = append(current, entry)
				continue
			}

			if len(current) > 1 {
				chunks = append(chunks, strings.Join(current, "\n"))
			}

			titled := title + "\n" + entry
			if len(titled) <= limit {
				current = []string{title, entry}
				continue
			}

			// entry alone does not fit under its header: hard-wrap it
			room := limit - len(title) - 1
			if room < 1 {
				room = 1
			}
			for _, part := range wrapBytes(entry, room) {
				chunks = append(chunks, title+"\n"+part)
			}
			current = []string{title}
		}

		if len(current) > 1 {
			chunks = append(chunks, strings.Join(current, "\n"))
		}
	}

	if len(chunks) == 0 {
		return splitLines(text, limit)
	}
	return chunks
}

// splitSections groups lines into sections separated by blank lines; the
// first line of each group is its header. Text that is not shaped like a
// report (a group without a bold header) yields nil so the caller falls
// back to plain line packing.
func splitSections(text string) [][]string {
	var sections [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				sections = append(sections, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}
	for _, section := range sections {
		if !strings.HasPrefix(section[0], "<b>") {
			return nil
		}
	}
	return sections
}

// splitLines is the fallback: greedy line packing, hard-wrapping lines that
// exceed the limit on their own.
func splitLines(text string, limit int) []string {
	var chunks []string
	var current string
	for _, line := range strings.Split(text, "\n") {
		candidate := line
		if current != "" {
			candidate = current + "\n" + line
		}
		if len(candidate) <= limit {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}

		if len(line) <= limit {
			current = line
			continue
		}
		chunks = append(chunks, wrapBytes(line, limit)...)
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// wrapBytes splits s into pieces of at most max bytes, cutting only on
// rune boundaries so multi-byte text never breaks mid-rune. A rune wider
// than max is emitted whole.
func wrapBytes(s string, max int) []string {
	var parts []string
	for len(s) > 0 {
		if len(s) <= max {
			parts = append(parts, s)
			break
		}
		end := max
		for end > 0 && !utf8.RuneStart(s[end]) {
			end--
		}
		if end == 0 {
			_, size := utf8.DecodeRuneInString(s)
			end = size
		}
		parts = append(parts, s[:end])
		s = s[end:]
	}
	return parts
}
