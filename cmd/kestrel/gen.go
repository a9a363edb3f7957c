package main

import (
	"os"

	"github.com/spf13/cobra"

	"kestrel/taskgen"
)

var (
	genManifest string
	genOut      string
	genPackage  string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate the boot table from a system manifest",
	Long: `gen reads a TOML system manifest, validates it against the
kernel's boot rules, and emits Go source declaring the task table plus
named constants for every task and endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := taskgen.Load(genManifest)
		if err != nil {
			return err
		}
		src, err := taskgen.Generate(m, genPackage)
		if err != nil {
			return err
		}
		if genOut == "-" {
			_, err = cmd.OutOrStdout().Write(src)
			return err
		}
		return os.WriteFile(genOut, src, 0o644)
	},
}

func init() {
	genCmd.Flags().StringVar(&genManifest, "manifest", "app.toml", "system manifest to read")
	genCmd.Flags().StringVar(&genOut, "out", "-", "output file, - for stdout")
	genCmd.Flags().StringVar(&genPackage, "package", "boot", "package name for the generated source")
}
