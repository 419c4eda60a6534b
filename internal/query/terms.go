package query

import "strings"

// Terms extracts the plain search words from a compiled full-text
// query, for snippet highlighting. Quoted terms and phrases are
// unwrapped, phrases split into their words, column filter prefixes
// dropped, and boolean operators ignored. Words are lowercased and
// deduplicated in order of first appearance.
func Terms(fts string) []string {
	var terms []string
	seen := make(map[string]bool)

	add := func(word string) {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || seen[word] {
			return
		}
		seen[word] = true
		terms = append(terms, word)
	}

	runes := []rune(fts)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '"' {
			continue
		}
		// Collect up to the closing quote, undoing doubled quotes.
		var b strings.Builder
		i++
		for i < len(runes) {
			if runes[i] == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					b.WriteRune('"')
					i += 2
					continue
				}
				break
			}
			b.WriteRune(runes[i])
			i++
		}
		for _, word := range strings.Fields(b.String()) {
			add(word)
		}
	}
	return terms
}
