package tui

import "unicode/utf8"

// maxInputLen est la longueur maximale du message, en runes
const maxInputLen = 500

// editRune applique une touche au texte saisi : backspace ou un caractère imprimable.
// Les autres touches laissent le texte inchangé.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// truncStr tronque s à n runes avec "…"
func truncStr(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
