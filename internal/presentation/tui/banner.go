package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the exprmig banner with the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{"                               _       ", "#818cf8"},
		{"   _____  ___ __  _ __ _ __ ___ (_) __ _ ", "#a78bfa"},
		{"  / _ \\ \\/ / '_ \\| '__| '_ ` _ \\| |/ _` |", "#c084fc"},
		{" |  __/>  <| |_) | |  | | | | | | | (_| |", "#e879f9"},
		{"  \\___/_/\\_\\ .__/|_|  |_| |_| |_|_|\\__, |", "#f472b6"},
		{"           |_|                     |___/ ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  legacy expression migration "+version).Faint())
	fmt.Fprintln(w)
}
