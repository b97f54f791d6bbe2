package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of viben",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(os.Stdout, cli.IsTerminal(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer, banner bool) {
	v := strings.TrimSpace(viben.Version)
	if banner {
		tui.PrintBanner(w, v)
		return
	}
	fmt.Fprintf(w, "viben version %s\n", v)
}
