package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	kerrors "github.com/asap-static/asap/internal/errors"
	"github.com/asap-static/asap/internal/utils"
)

// Prompter asks a question and returns the answer.
//
// An empty answer selects defaultValue. When validate is non-nil the answer
// must pass it before it is returned.
type Prompter interface {
	Ask(question, defaultValue string, validate func(string) error) (string, error)
}

// Default returns the Prompter for the current process.
func Default(yes bool) Prompter {
	if yes {
		return Static{}
	}
	if utils.IsTerminal() {
		return Interactive{}
	}
	return &Line{In: os.Stdin, Out: os.Stdout}
}

// Interactive prompts on the terminal with an editable default.
type Interactive struct{}

func (Interactive) Ask(question, defaultValue string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     question,
		Default:   defaultValue,
		AllowEdit: true,
	}
	if validate != nil {
		p.Validate = func(input string) error {
			return validate(strings.TrimSpace(input))
		}
	}

	answer, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return "", kerrors.ErrCancelled
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = defaultValue
	}
	return answer, nil
}

// Line reads answers one line at a time. It is used when stdin is not a
// terminal. Input that ends before an acceptable answer is an
// ErrInvalidInput, not a cancellation.
type Line struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (l *Line) Ask(question, defaultValue string, validate func(string) error) (string, error) {
	if l.reader == nil {
		l.reader = bufio.NewReader(l.In)
	}

	for {
		if defaultValue != "" {
			fmt.Fprintf(l.Out, "%s (%s): ", question, defaultValue)
		} else {
			fmt.Fprintf(l.Out, "%s: ", question)
		}

		line, err := l.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: input ended before %q was answered", kerrors.ErrInvalidInput, question)
			}
			return "", fmt.Errorf("reading answer: %w", err)
		}

		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = defaultValue
		}

		if validate == nil {
			return answer, nil
		}
		verr := validate(answer)
		if verr == nil {
			return answer, nil
		}
		fmt.Fprintf(l.Out, "%s\n", verr)
		if err != nil {
			// Input ended on an invalid answer.
			return "", verr
		}
	}
}

// Static never asks. It answers every question with the default, which
// must still pass validation.
type Static struct{}

func (Static) Ask(_ string, defaultValue string, validate func(string) error) (string, error) {
	if validate != nil {
		if err := validate(defaultValue); err != nil {
			return "", err
		}
	}
	return defaultValue, nil
}
