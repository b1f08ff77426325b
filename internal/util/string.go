package util

import "unicode/utf8"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// RuneLen counts characters, not bytes. Confession text is multi-script,
// so every budget comparison in the pipeline goes through this.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
