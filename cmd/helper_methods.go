package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/asap-static/asap/internal/audit"
	"github.com/asap-static/asap/internal/client"
	"github.com/asap-static/asap/internal/configs"
	"github.com/asap-static/asap/internal/registry"
	"github.com/asap-static/asap/internal/ui"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up. The
// cleanup function is safe to call more than once.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			if quiet {
				log.SetOutput(os.Stderr)
			}

			finalMsg := ""
			if s.FinalMSG != "" {
				finalMsg = ui.EnsureNewline(s.FinalMSG)
				// Clear FinalMSG so s.Stop() doesn't print it.
				s.FinalMSG = ""
			}

			// Stop the spinner first to clear the spinner line.
			if quiet {
				s.Stop()
			}

			if finalMsg != "" {
				fmt.Fprint(os.Stdout, finalMsg)
			}
		})
	}

	return s, cleanup
}

// reportFailure prints a failure line to stderr and returns an error that
// main will not print again.
func reportFailure(msg string, hints ...string) error {
	fmt.Fprint(os.Stderr, ui.EnsureNewline(ui.Failure(msg)))
	for _, hint := range hints {
		fmt.Fprint(os.Stderr, ui.EnsureNewline(ui.Hint(hint)))
	}
	return &reportedError{msg: msg}
}

// activeConfig returns the loaded config, or the defaults when a command
// runs without the root pre-run hook.
func activeConfig() *configs.Config {
	if config == nil {
		return configs.Defaults()
	}
	return config
}

// newClient builds a hosting API client from the loaded config.
func newClient() *client.Client {
	cfg := activeConfig()
	timeout, err := cfg.HTTPTimeout()
	if err != nil {
		timeout = configs.DefaultTimeout
	}
	return client.New(client.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   timeout,
		RetryMax:  cfg.Retries(),
		UserAgent: "asap/" + Version,
		Logger:    Logger,
	})
}

func openRegistry() *registry.Registry {
	path := configs.RegistryPath()
	Logger.Debugf("Using site registry at %s", path)
	return registry.Open(path)
}

func openHistory() *audit.History {
	return audit.Default()
}
