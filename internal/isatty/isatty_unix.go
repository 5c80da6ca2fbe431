//go:build linux || darwin || freebsd || netbsd || openbsd

// Package isatty answers whether a writer is a terminal, used by
// staticlogcat to decide whether its level prefixes may be colorized with
// ANSI escapes.
package isatty

import "golang.org/x/term"

type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is connected to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
