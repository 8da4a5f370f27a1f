package color

import (
	"os"

	"golang.org/x/term"
)

var enabled bool

// Init enables colors when stderr is a TTY.
func Init() {
	enabled = IsTerminal(os.Stderr)
}

// SetEnabled forces colors on or off.
func SetEnabled(on bool) {
	enabled = on
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func wrap(code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func Red(s string) string    { return wrap("31", s) }
func Yellow(s string) string { return wrap("33", s) }
func Green(s string) string  { return wrap("32", s) }
func Bold(s string) string   { return wrap("1", s) }
func Dim(s string) string    { return wrap("2", s) }
func Cyan(s string) string   { return wrap("36", s) }
