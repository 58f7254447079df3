package output

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ProgressBar renders current/total as a fixed-width bar.
func ProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	current = max(0, min(current, total))
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	bar += strings.Repeat(" ", width-filled)
	bar += StyleSymbols["bullet"]
	return bar
}

func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalHeight() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= 0 {
		return 24
	}
	return height
}
