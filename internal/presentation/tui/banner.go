package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` __      __                      _      _   `, "#34d399"},
	{` \ \    / /__ _ _  _ _ __  ___ (_)_ _ | |_ `, "#2dd4bf"},
	{`  \ \/\/ / _' | || | '_ \/ _ \| | ' \|  _|`, "#22d3ee"},
	{`   \_/\_/\__,_|\_, | .__/\___/|_|_||_|\__|`, "#38bdf8"},
	{`                |__/|_|                    `, "#60a5fa"},
}

// PrintBanner writes the Waypoint banner, coloured when the terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
