// Command prompttest runs one augmentation call against a configured
// provider and prints the field before and after.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/llm"
	"resume-builder/internal/shared/config"
	"resume-builder/resume/augment"
	"resume-builder/resume/form"
	"resume-builder/resume/model"
)

type flags struct {
	resume     string
	field      string
	provider   string
	model      string
	showPrompt bool
	asJSON     bool
}

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "prompttest",
		Short:        "Run one summary or responsibilities improvement against a provider",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.AugmentProvider = f.provider
			cfg.LLMModel = f.model
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, f)
		},
	}
	cmd.Flags().StringVar(&f.resume, "resume", "", "path to a resume JSON document")
	cmd.Flags().StringVar(&f.field, "field", string(augment.FieldSummary), "field to improve: summary or responsibilities")
	cmd.Flags().StringVar(&f.provider, "provider", cfg.AugmentProvider, "augment provider: remote, openai or gemini")
	cmd.Flags().StringVar(&f.model, "model", cfg.LLMModel, "model name for openai or gemini")
	cmd.Flags().DurationVar(&cfg.LLMTimeout, "timeout", cfg.LLMTimeout, "call timeout")
	cmd.Flags().BoolVar(&f.showPrompt, "show-prompt", false, "print the system prompt before calling")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the augmentation result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func run(ctx context.Context, out io.Writer, cfg config.Config, f flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	field := augment.Field(strings.TrimSpace(f.field))
	if field != augment.FieldSummary && field != augment.FieldResponsibilities {
		return fmt.Errorf("unknown field %q", f.field)
	}
	raw, err := os.ReadFile(f.resume)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	r, err := model.DecodeResume(raw)
	if err != nil {
		return fmt.Errorf("decode resume: %w", err)
	}

	improver, err := bootstrap.NewImprover(ctx, cfg)
	if err != nil {
		return err
	}
	if improver == nil {
		return errors.New("augmentation is disabled (AUGMENT_PROVIDER=none)")
	}
	if f.showPrompt {
		name := llm.PromptSummary
		if field == augment.FieldResponsibilities {
			name = llm.PromptResponsibilities
		}
		text, ok := llm.PromptTemplate(name)
		if !ok {
			return fmt.Errorf("unknown prompt %q", name)
		}
		fmt.Fprintf(out, "--- prompt %s ---\n%s\n\n", name, strings.TrimSpace(text))
	}

	ctrl := form.NewController(model.DraftFromResume(r))
	before := ctrl.Draft()
	callCtx, cancel := context.WithTimeout(ctx, cfg.LLMTimeout)
	defer cancel()

	adapter := augment.NewAdapter(improver)
	var res augment.Result
	if field == augment.FieldSummary {
		res, err = adapter.ImproveSummary(callCtx, ctrl)
	} else {
		res, err = adapter.ImproveResponsibilities(callCtx, ctrl)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", res.Notice.Message, err)
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(out, "notice: %s (%s)\n\n", res.Notice.Message, res.Notice.Level)
	if field == augment.FieldSummary {
		printPair(out, "summary", before.Summary, res.Draft.Summary)
		return nil
	}
	for i, e := range res.Draft.WorkExperience {
		printPair(out, fmt.Sprintf("workExperience[%d] %s", i, e.CompanyName), before.WorkExperience[i].Description, e.Description)
	}
	return nil
}

func printPair(out io.Writer, label, before, after string) {
	fmt.Fprintf(out, "== %s\n-- before\n%s\n-- after\n%s\n\n", label, before, after)
}
