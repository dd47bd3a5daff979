// Command renderdemo renders a resume JSON file (or a built-in sample) to
// HTML, DOCX or PDF, prints a terminal preview, or re-renders on change.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "renderdemo",
	Short:         "Render resumes through the preview projector",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
