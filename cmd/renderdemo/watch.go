package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render a resume JSON file whenever it changes",
	RunE:  runWatch,
}

var (
	watchInput  string
	watchOutput string
	watchFormat string
)

const watchDebounce = 200 * time.Millisecond

func init() {
	watchCmd.Flags().StringVarP(&watchInput, "in", "i", "", "Path to resume JSON (required)")
	watchCmd.Flags().StringVarP(&watchOutput, "out", "o", "./out/resume", "Output path without extension")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "html", "Output format: html, docx or pdf")

	if err := watchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rebuild := func() {
		d, err := loadDraft(watchInput)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "load failed: %v\n", err)
			return
		}
		path, err := renderTo(ctx, d, watchOutput, watchFormat, false)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%s wrote %s\n", time.Now().Format("15:04:05"), path)
	}
	rebuild()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory and filter by name.
	target, err := filepath.Abs(watchInput)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				pending = time.After(watchDebounce)
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		case <-pending:
			pending = nil
			rebuild()
		}
	}
}
