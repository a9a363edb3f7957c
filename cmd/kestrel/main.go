package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/buildinfo"
)

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Host tools for the kestrel kernel",
	Long: `kestrel drives the kernel on a host machine: it generates boot
tables from system manifests, runs scripted systems under the simulator,
and decodes framed log captures.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = buildinfo.Short()
	rootCmd.AddCommand(genCmd, simCmd, logsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
