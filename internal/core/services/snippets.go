package services

import (
	"sort"
	"strings"
)

const snippetWindow = 150

// generateSnippets returns up to max short extracts of content around
// occurrences of the given lowercase terms, with every matched term
// wrapped in <mark> tags. Windows around nearby matches are merged so
// one passage never yields several overlapping snippets.
func generateSnippets(content string, terms []string, max int) []string {
	if content == "" || len(terms) == 0 || max <= 0 {
		return nil
	}

	lower := strings.ToLower(content)

	type window struct{ start, end int }
	var windows []window
	for _, term := range terms {
		for from := 0; ; {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			at := from + idx
			windows = append(windows, window{
				start: snapLeft(content, at-snippetWindow/2),
				end:   snapRight(content, at+len(term)+snippetWindow/2),
			})
			from = at + len(term)
		}
	}
	if len(windows) == 0 {
		return nil
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end {
			if w.end > last.end {
				last.end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}

	snippets := make([]string, 0, max)
	for _, w := range merged {
		if len(snippets) == max {
			break
		}
		text := strings.TrimSpace(content[w.start:w.end])
		text = highlight(text, terms)
		if w.start > 0 {
			text = "..." + text
		}
		if w.end < len(content) {
			text += "..."
		}
		snippets = append(snippets, text)
	}
	return snippets
}

// highlight wraps each case-insensitive occurrence of the terms in
// <mark> tags, preserving the original casing of the matched text.
func highlight(text string, terms []string) string {
	lower := strings.ToLower(text)
	for _, term := range terms {
		var b strings.Builder
		from := 0
		for {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			at := from + idx
			b.WriteString(text[from:at])
			b.WriteString("<mark>")
			b.WriteString(text[at : at+len(term)])
			b.WriteString("</mark>")
			from = at + len(term)
		}
		if from == 0 {
			continue
		}
		b.WriteString(text[from:])
		text = b.String()
		lower = strings.ToLower(text)
	}
	return text
}

// snapLeft moves a window start right to the next word boundary so a
// snippet never opens mid-word. Clamped to the text bounds.
func snapLeft(content string, at int) int {
	if at <= 0 {
		return 0
	}
	if idx := strings.IndexAny(content[at:], " \t\n"); idx >= 0 && at+idx+1 < len(content) {
		return at + idx + 1
	}
	return at
}

// snapRight moves a window end left to the previous word boundary so a
// snippet never closes mid-word. Clamped to the text bounds.
func snapRight(content string, at int) int {
	if at >= len(content) {
		return len(content)
	}
	if idx := strings.LastIndexAny(content[:at], " \t\n"); idx > 0 {
		return idx
	}
	return at
}
