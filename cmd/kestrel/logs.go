package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kestrel/hal"
)

var logsCmd = &cobra.Command{
	Use:   "logs [capture]",
	Short: "Decode a framed log capture",
	Long: `logs decodes a stream of [task, len, payload] log frames, as
written by the kernel's frame sink, from a capture file or stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
		r := hal.NewFrameReader(in)
		for {
			f, err := r.Next()
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("capture truncated mid-frame")
			}
			if err != nil {
				return err
			}
			payload := string(f.Payload)
			if !utf8.ValidString(payload) {
				payload = fmt.Sprintf("%x", f.Payload)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				taskStyle.Render(fmt.Sprintf("task%-3d", f.Task)), payload)
		}
	},
}
