package picker

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Match is an item index with its relevance score.
type Match struct {
	Index int
	Score float64
}

// TrigramMatcher ranks item texts against multi-word queries.
type TrigramMatcher struct {
	normalized   []string
	itemTrigrams []map[string]struct{}
}

// NewTrigramMatcher indexes texts.
func NewTrigramMatcher(texts []string) *TrigramMatcher {
	m := &TrigramMatcher{
		normalized:   make([]string, len(texts)),
		itemTrigrams: make([]map[string]struct{}, len(texts)),
	}
	for i, text := range texts {
		n := fold(text)
		m.normalized[i] = n
		m.itemTrigrams[i] = trigrams(n)
	}
	return m
}

// Search returns the items matching every word of query, best first. An
// empty query matches everything in index order.
func (m *TrigramMatcher) Search(query string) []Match {
	words := strings.Fields(fold(query))
	if len(words) == 0 {
		all := make([]Match, len(m.normalized))
		for i := range all {
			all[i] = Match{Index: i}
		}
		return all
	}

	wordTris := make([]map[string]struct{}, len(words))
	for i, w := range words {
		wordTris[i] = trigrams(w)
	}

	var matches []Match
	for i := range m.normalized {
		if score := m.score(i, words, wordTris); score > 0 {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	// stable so equal scores keep recency order
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return matches
}

func (m *TrigramMatcher) score(idx int, words []string, wordTris []map[string]struct{}) float64 {
	text := m.normalized[idx]
	total := 0.0
	for i, word := range words {
		if len([]rune(word)) <= 2 {
			if !strings.Contains(text, word) {
				return 0
			}
			total++
			continue
		}

		// coverage of the query word, not Jaccard: long history entries
		// must still match short words
		sim := coverage(wordTris[i], m.itemTrigrams[idx])
		if sim < 0.4 {
			return 0
		}
		if strings.Contains(text, word) {
			sim += 0.5
		}
		total += sim
	}
	return total / float64(len(words))
}

// fold lowercases s and strips diacritics so "bjork" finds "Björk".
func fold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// trigrams pads s with two spaces on each side so prefixes and suffixes get
// their own trigrams.
func trigrams(s string) map[string]struct{} {
	if s == "" {
		return nil
	}
	runes := []rune("  " + s + "  ")
	tris := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		tri := string(runes[i : i+3])
		if strings.TrimSpace(tri) != "" {
			tris[tri] = struct{}{}
		}
	}
	return tris
}

func coverage(query, item map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hit := 0
	for tri := range query {
		if _, ok := item[tri]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(query))
}
