package cmd

import (
	"fmt"
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/asap-static/asap/internal/utils"
)

// Version is set at build time with -ldflags "-X github.com/asap-static/asap/cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the asap version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if utils.IsOutputTerminal() {
			banner := figure.NewColorFigure("asap", "alligator2", "cyan", true)
			banner.Print()
			fmt.Println()
		}
		fmt.Printf("asap %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}
