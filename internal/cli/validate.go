package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/folio/internal/book"
	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/ir"
	"github.com/roach88/folio/internal/toc"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Title        string
	Contributors []string
	JumpPolicy   string
	Show         bool // print the table of contents the outline compiles to
}

// ValidationResult holds dry-run results.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Path   string           `json:"path"`
	Title  string           `json:"title"`
	Result *compiler.Result `json:"result,omitempty"`
	Error  *CLIError        `json:"error,omitempty"`
	TOC    string           `json:"toc,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <outline-file|book.cue>",
		Short: "Dry-run an outline without writing to the database",
		Long: `Compile an outline in memory and report what it would create.

Reports work and section counts, skipped lines, unreachable headings and
omitted sequence edges. Nothing is written to the database.

A book record (.cue) supplies title, contributors and jump policy; flags
override it. A bare outline file is titled after its file name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "root title (default: record title or file name)")
	cmd.Flags().StringArrayVar(&opts.Contributors, "contributor", nil, "fallback contributor name (repeatable)")
	cmd.Flags().StringVar(&opts.JumpPolicy, "jump-policy", "", "orphan|reject (default from record or config)")
	cmd.Flags().BoolVar(&opts.Show, "show", false, "print the compiled table of contents")

	return cmd
}

// validationInput is what one dry run compiles.
type validationInput struct {
	title        string
	contributors []string
	policy       string
	text         string
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	in, err := loadValidationInput(opts, path)
	if err != nil {
		code, message := classifyError(err)
		_ = formatter.Error(code, message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}

	policy, err := compiler.ParseJumpPolicy(in.policy)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %v", ErrCodeConfig, err))
	}

	mem := compiler.NewMemoryTarget(nil)
	result := ValidationResult{Path: path, Title: in.title}

	fallback, err := resolveNames(cmd, mem, in.contributors)
	if err == nil {
		result.Result, err = compiler.Compile(cmd.Context(), mem, compiler.Input{
			Text:      in.text,
			RootTitle: in.title,
			Fallback:  fallback,
		}, compiler.WithJumpPolicy(policy), compiler.WithLogger(opts.logger()))
	}
	if err != nil {
		code, message := classifyError(err)
		result.Error = &CLIError{Code: code, Message: message}
		return outputValidation(formatter, result)
	}

	result.Valid = true
	result.Result.PersonsCreated = len(mem.Persons)
	formatter.VerboseLog("Dry run created %d entities", len(mem.Works)+len(mem.Expressions)+len(mem.Embodiments))

	if opts.Show {
		t, err := toc.Build(cmd.Context(), mem, result.Result.ManifestationID)
		if err != nil {
			return WrapExitError(ExitCommandError, "build toc", err)
		}
		var buf bytes.Buffer
		if err := toc.RenderOutline(&buf, t); err != nil {
			return WrapExitError(ExitCommandError, "render toc", err)
		}
		result.TOC = buf.String()
	}
	return outputValidation(formatter, result)
}

// loadValidationInput reads a book record or a bare outline, then applies
// flag overrides.
func loadValidationInput(opts *ValidateOptions, path string) (validationInput, error) {
	var in validationInput

	if filepath.Ext(path) == ".cue" {
		b, err := book.Load(path)
		if err != nil {
			return in, err
		}
		text, err := b.ReadOutline()
		if err != nil {
			return in, err
		}
		in = validationInput{title: b.Title, contributors: b.Contributors, policy: b.JumpPolicy, text: text}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return in, fmt.Errorf("read outline: %w", err)
		}
		base := filepath.Base(path)
		in = validationInput{title: strings.TrimSuffix(base, filepath.Ext(base)), text: string(data)}
	}

	if opts.Title != "" {
		in.title = opts.Title
	}
	if len(opts.Contributors) > 0 {
		in.contributors = opts.Contributors
	}
	if opts.JumpPolicy != "" {
		in.policy = opts.JumpPolicy
	}
	if in.policy == "" {
		in.policy = string(opts.config().JumpPolicy())
	}
	return in, nil
}

func resolveNames(cmd *cobra.Command, mem *compiler.MemoryTarget, names []string) ([]ir.Person, error) {
	out := make([]ir.Person, 0, len(names))
	for _, name := range names {
		p, err := mem.ResolvePerson(cmd.Context(), name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// outputValidation prints the dry-run outcome. A compile error is a
// validation failure (exit code 1).
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if result.Error != nil {
			_ = formatter.Error(result.Error.Code, result.Error.Message, result)
		} else if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Error != nil {
			fmt.Fprintf(w, "✗ %s\n", result.Path)
			fmt.Fprintf(w, "  %s: %s\n", result.Error.Code, result.Error.Message)
		} else {
			res := result.Result
			fmt.Fprintf(w, "✓ %s: %q is valid\n", result.Path, result.Title)
			fmt.Fprintf(w, "  %d work(s), %d section(s), %d person(s)\n", res.Works, res.Sections, res.PersonsCreated)
			if len(res.SkippedLines) > 0 {
				fmt.Fprintf(w, "  skipped lines: %s\n", joinInts(res.SkippedLines))
			}
			for _, o := range res.Orphans {
				fmt.Fprintf(w, "  ! line %d: %q at depth %d after depth %d is unreachable\n",
					o.Line, o.Title, o.Level, o.PrevLevel)
			}
			if res.DetachedSequences > 0 {
				fmt.Fprintf(w, "  ! %d sequence edge(s) omitted across parents\n", res.DetachedSequences)
			}
			if result.TOC != "" {
				fmt.Fprintln(w)
				fmt.Fprint(w, result.TOC)
			}
		}
	}

	if result.Error != nil {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", result.Error.Code, result.Error.Message))
	}
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
