package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/folio/internal/book"
	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/ir"
	"github.com/roach88/folio/internal/metrics"
	"github.com/roach88/folio/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	JumpPolicy string // overrides compile.jump_policy
	Metrics    string // overrides metrics.textfile
}

// BookReport is the outcome of compiling one book record.
type BookReport struct {
	Path   string           `json:"path"`
	Title  string           `json:"title,omitempty"`
	Result *compiler.Result `json:"result,omitempty"`
	Error  *CLIError        `json:"error,omitempty"`

	// Previous lists Manifestations already compiled from the same outline text.
	Previous []string `json:"previous,omitempty"`
}

// CompileReport is the outcome of one compile command.
type CompileReport struct {
	Database string       `json:"database"`
	Books    []BookReport `json:"books"`
	Failed   int          `json:"failed"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <book.cue|glob>...",
		Short: "Compile book outlines into the database",
		Long: `Compile book records into the bibliographic graph database.

Each book record names a title, fallback contributors and an outline file.
Every book compiles in its own transaction: a failing book leaves nothing
behind, and the remaining books still compile.

Examples:
  folio compile books/novel.cue
  folio compile "books/**/*.cue" --db library.db
  folio compile books/novel.cue --jump-policy reject --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.JumpPolicy, "jump-policy", "", "orphan|reject (default from config)")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "write Prometheus metrics to this textfile")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()
	logger := opts.logger()

	policy := cfg.JumpPolicy()
	if opts.JumpPolicy != "" {
		p, err := compiler.ParseJumpPolicy(opts.JumpPolicy)
		if err != nil {
			return outputCompileError(formatter, ErrCodeConfig, err.Error())
		}
		policy = p
	}

	paths, err := book.Expand(args)
	if err != nil {
		code := ErrCodeScanError
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		} else if errors.Is(err, book.ErrNoMatch) {
			code = ErrCodeNoFiles
		}
		return outputCompileError(formatter, code, err.Error())
	}
	formatter.VerboseLog("Compiling %d book(s) into %s", len(paths), cfg.Database.Path)

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("opening database: %v", err))
	}
	defer st.Close()

	m := metrics.New()
	report := CompileReport{Database: cfg.Database.Path, Books: make([]BookReport, 0, len(paths))}

	for _, path := range paths {
		start := time.Now()
		br := compileBook(cmd, st, path, policy, opts)
		if br.Error != nil {
			m.ObserveFailure(time.Since(start))
			report.Failed++
			logger.Error("compile failed", "path", path, "code", br.Error.Code, "error", br.Error.Message)
		} else {
			m.Observe(br.Result, time.Since(start))
			logger.Info("compiled book",
				"path", path,
				"manifestation", br.Result.ManifestationID,
				"works", br.Result.Works,
				"orphans", len(br.Result.Orphans))
		}
		report.Books = append(report.Books, br)
	}

	textfile := cfg.Metrics.Textfile
	if opts.Metrics != "" {
		textfile = opts.Metrics
	}
	if textfile != "" {
		if err := m.WriteTextfile(textfile); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing metrics: %v", err))
		}
		formatter.VerboseLog("Wrote metrics to %s", textfile)
	}

	return outputCompileReport(formatter, report)
}

// compileBook loads one record and compiles its outline in one transaction.
func compileBook(cmd *cobra.Command, st *store.Store, path string, policy compiler.JumpPolicy, opts *CompileOptions) BookReport {
	br := BookReport{Path: path}
	fail := func(err error) BookReport {
		code, message := classifyError(err)
		br.Error = &CLIError{Code: code, Message: message}
		return br
	}

	b, err := book.Load(path)
	if err != nil {
		return fail(err)
	}
	br.Title = b.Title

	text, err := b.ReadOutline()
	if err != nil {
		return fail(err)
	}
	previous, err := st.FindByDigest(cmd.Context(), ir.SourceDigest(text))
	if err != nil {
		return fail(err)
	}
	if len(previous) > 0 {
		br.Previous = previous
		opts.logger().Warn("outline already compiled; creating another manifestation",
			"path", path, "previous", previous)
	}

	if b.JumpPolicy != "" && opts.JumpPolicy == "" {
		policy = compiler.JumpPolicy(b.JumpPolicy)
	}

	res, err := st.Compile(cmd.Context(), store.Request{
		Text:          text,
		RootTitle:     b.Title,
		FallbackNames: b.Contributors,
	}, compiler.WithJumpPolicy(policy), compiler.WithLogger(opts.logger()))
	if err != nil {
		return fail(err)
	}
	br.Result = res
	return br
}

// outputCompileReport prints per-book outcomes. Any failed book is a
// command error.
func outputCompileReport(formatter *OutputFormatter, report CompileReport) error {
	failures := BatchFailure{Total: len(report.Books)}
	for _, br := range report.Books {
		if br.Error != nil {
			failures.Add(br.Path, br.Error.Code, br.Error.Message)
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Report(report, failures.Err("book(s)")); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, br := range report.Books {
			if br.Error != nil {
				fmt.Fprintf(w, "✗ %s\n", br.Path)
				fmt.Fprintf(w, "  %s: %s\n", br.Error.Code, br.Error.Message)
				continue
			}
			res := br.Result
			fmt.Fprintf(w, "✓ %s: %q → manifestation %s\n", br.Path, br.Title, res.ManifestationID)
			fmt.Fprintf(w, "  %d work(s), %d section(s), %d skipped line(s), %d new person(s)\n",
				res.Works, res.Sections, len(res.SkippedLines), res.PersonsCreated)
			for _, o := range res.Orphans {
				fmt.Fprintf(w, "  ! line %d: %q at depth %d after depth %d is unreachable\n",
					o.Line, o.Title, o.Level, o.PrevLevel)
			}
			if res.DetachedSequences > 0 {
				fmt.Fprintf(w, "  ! %d sequence edge(s) omitted across parents\n", res.DetachedSequences)
			}
			if len(br.Previous) > 0 {
				fmt.Fprintf(w, "  ! same outline already compiled as %s\n", strings.Join(br.Previous, ", "))
			}
		}
	}

	if failure := failures.Err("book(s)"); failure != nil {
		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, failure.Code+": "+failure.Message)
	}
	return nil
}

// outputCompileError outputs a command-level error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
