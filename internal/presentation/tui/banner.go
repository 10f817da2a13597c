package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Forager.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Warm gradient, amber into rose
	lines := []struct {
		text  string
		color string
	}{
		{`  ______                                  `, "#fbbf24"},
		{` |  ____|__  _ __ __ _  __ _  ___ _ __    `, "#f59e0b"},
		{` | |__ / _ \| '__/ _' |/ _' |/ _ \ '__|   `, "#f97316"},
		{` |  __| (_) | | | (_| | (_| |  __/ |      `, "#fb7185"},
		{` |_|   \___/|_|  \__,_|\__, |\___|_|      `, "#f43f5e"},
		{`                       |___/              `, "#e11d48"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
