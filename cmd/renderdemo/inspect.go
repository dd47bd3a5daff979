package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/extract"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the text of a rendered HTML, DOCX or PDF file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	lines, err := extract.Text(cmd.Context(), data, "", args[0])
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), l)
	}
	return nil
}
