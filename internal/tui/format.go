package tui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCount renders n with thousands separators and a noun, pluralized
// with a trailing "s".
func FormatCount(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return message.NewPrinter(language.English).Sprintf("%d %s", n, noun)
}
