package tui

// revealedPrefix returns the first count runes of text. A negative count
// yields the empty string; a count past the end yields the full text.
func revealedPrefix(text string, count int) string {
	if count <= 0 {
		return ""
	}
	runes := []rune(text)
	if count >= len(runes) {
		return text
	}
	return string(runes[:count])
}
