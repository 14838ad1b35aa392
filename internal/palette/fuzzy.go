package palette

import (
	"strings"
	"unicode"
)

// MatchRange is a half-open rune range of a match in a target string.
type MatchRange struct {
	Start, End int
}

const (
	scoreMatch       = 1
	bonusWordStart   = 8
	bonusConsecutive = 5
	bonusFirstRune   = 3
	keyScoreDivisor  = 2
	layerBoost       = 10
)

// FuzzyMatch matches the runes of query in order within target, ignoring
// case. It returns 0 and nil ranges when any rune is missing. Matches at word
// starts and runs of consecutive matches score higher.
func FuzzyMatch(query, target string) (int, []MatchRange) {
	if query == "" {
		return 0, nil
	}
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))

	score := 0
	var ranges []MatchRange
	qi := 0
	prev := -2
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		score += scoreMatch
		if ti == 0 {
			score += bonusFirstRune
		}
		if ti == 0 || isSeparator(t[ti-1]) {
			score += bonusWordStart
		}
		if ti == prev+1 {
			score += bonusConsecutive
			ranges[len(ranges)-1].End = ti + 1
		} else {
			ranges = append(ranges, MatchRange{Start: ti, End: ti + 1})
		}
		prev = ti
		qi++
	}
	if qi < len(q) {
		return 0, nil
	}
	return score, ranges
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '+' || r == ':'
}

// ScoreEntry scores entry against query on its name and keys. Entries of the
// active view get a boost.
func ScoreEntry(entry *PaletteEntry, query string) {
	entry.Score, entry.MatchRanges = 0, nil
	if query == "" {
		return
	}
	score, ranges := FuzzyMatch(query, entry.Name)
	if keyScore, _ := FuzzyMatch(query, entry.Key); keyScore/keyScoreDivisor > score {
		score, ranges = keyScore/keyScoreDivisor, nil
	}
	if idScore, _ := FuzzyMatch(query, entry.CommandID); idScore/keyScoreDivisor > score {
		score, ranges = idScore/keyScoreDivisor, nil
	}
	if score == 0 {
		return
	}
	if entry.Layer == LayerCurrentMode {
		score += layerBoost
	}
	entry.Score, entry.MatchRanges = score, ranges
}

// FilterEntries returns the entries matching query, best first. An empty
// query keeps every entry, ordered by layer.
func FilterEntries(entries []PaletteEntry, query string) []PaletteEntry {
	result := make([]PaletteEntry, 0, len(entries))
	for _, e := range entries {
		ScoreEntry(&e, query)
		if query != "" && e.Score == 0 {
			continue
		}
		result = append(result, e)
	}
	SortEntries(result)
	return result
}
