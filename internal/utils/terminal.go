package utils

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsOutputTerminal returns true if stdout is a terminal.
func IsOutputTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
