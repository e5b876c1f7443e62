package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	text := fmt.Sprintf(format, a...)
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// Failure renders a one-line failure message with the error mark.
func Failure(msg string) string {
	return Error.Sprint("✗") + " " + msg
}

// Done renders a one-line success message with the success mark.
func Done(msg string) string {
	return Success.Sprint("✓") + " " + msg
}

// Hint renders a follow-up suggestion line.
func Hint(msg string) string {
	return Info.Sprint("→") + " " + msg
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Code formats runnable commands.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats local file or directory paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// URL formats live site addresses.
	URL = Formatter{color.New(color.FgCyan, color.Underline), "", ""}

	// Tag formats site tags.
	Tag = Formatter{color.New(color.FgCyan), "'", "'"}

	// Success formats success marks and messages.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error formats error marks and messages.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats warnings.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats hints and directional marks.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Muted formats secondary text such as server messages.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)
