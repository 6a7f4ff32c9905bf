// Package kimariji computes the shortest identifying prefix for each verse.
//
// The kimariji of a card is the shortest leading run of characters, ignoring
// whitespace and punctuation, that distinguishes its verse from every other
// verse in the set. The search grows a candidate prefix one character at a
// time and checks it against all other stripped verses, which is quadratic in
// the total character count. That is fine for sets in the low hundreds; this
// package is not meant for large corpora.
package kimariji

import (
	"strings"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/kana"
)

// Record describes the identifying prefix of one verse.
type Record struct {
	ID int

	// Original is the verse as loaded (normalized, punctuation intact).
	Original string

	// Prefix is the leading slice of Original that covers the identifying
	// prefix, including any interleaved whitespace or punctuation.
	Prefix string

	// PrefixLen counts only the non-strippable characters of Prefix.
	PrefixLen int

	// EndIndex is the rune offset into Original just past the prefix.
	EndIndex int
}

// ComputeRecords resolves the identifying prefix for every verse. Records are
// index-aligned with the input and carry the index as ID.
//
// Duplicate stripped verses, or a verse that is a strict prefix of another,
// fall back to their full stripped length. The resulting prefix may then still
// collide; that degenerate input is accepted silently.
func ComputeRecords(originals []string) []Record {
	stripped := make([]string, len(originals))
	for i, s := range originals {
		stripped[i] = kana.StripForMatching(s)
	}
	lengths := uniqueLengths(stripped)
	records := make([]Record, len(originals))
	for i, original := range originals {
		end := prefixEndIndex(original, lengths[i])
		runes := []rune(original)
		records[i] = Record{
			ID:        i,
			Original:  original,
			Prefix:    string(runes[:end]),
			PrefixLen: lengths[i],
			EndIndex:  end,
		}
	}
	return records
}

// uniqueLengths returns, per stripped verse, the smallest prefix length not
// shared with any other verse, or the full length when no such prefix exists.
func uniqueLengths(stripped []string) []int {
	lengths := make([]int, len(stripped))
	runeLists := make([][]rune, len(stripped))
	for i, s := range stripped {
		runeLists[i] = []rune(s)
	}
	for i, runes := range runeLists {
		if len(runes) == 0 {
			lengths[i] = 0
			continue
		}
		for n := 1; n <= len(runes); n++ {
			prefix := string(runes[:n])
			if !conflicts(stripped, i, prefix) {
				lengths[i] = n
				break
			}
		}
		if lengths[i] == 0 {
			lengths[i] = len(runes)
		}
	}
	return lengths
}

func conflicts(stripped []string, self int, prefix string) bool {
	for j, other := range stripped {
		if j == self {
			continue
		}
		if strings.HasPrefix(other, prefix) {
			return true
		}
	}
	return false
}

// prefixEndIndex maps a stripped-character count back onto the original text.
// Strippable runes are passed over without counting; the returned offset sits
// just past the rune at which the count is reached, or at the end of the text
// when only strippable runes remain.
func prefixEndIndex(original string, requiredLen int) int {
	if requiredLen <= 0 {
		return 0
	}
	count := 0
	runes := []rune(original)
	for i, r := range runes {
		if kana.IsStrippable(r) {
			continue
		}
		count++
		if count >= requiredLen {
			return i + 1
		}
	}
	return len(runes)
}
