// Package prompt asks the user for values during a deploy.
//
// A Prompter is chosen once per command: Interactive when stdin is a
// terminal, Line when input is piped, and Static when prompts are disabled
// with --yes. Every implementation returns errors.ErrCancelled when the user
// aborts.
package prompt
