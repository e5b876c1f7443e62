package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/asap-static/asap/cmd"
	"github.com/asap-static/asap/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.RootCmd.ExecuteContext(ctx); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprint(os.Stderr, ui.EnsureNewline(ui.Failure(err.Error())))
		}
		stop()
		os.Exit(1)
	}
}
