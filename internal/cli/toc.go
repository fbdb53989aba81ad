package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/folio/internal/store"
	"github.com/roach88/folio/internal/toc"
)

// NewTOCCommand creates the toc command.
func NewTOCCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toc [manifestation-id]",
		Short: "Print the table of contents of a compiled book",
		Long: `Read a compiled Manifestation back from the database and print its
nested, ordered table of contents.

Text output is outline notation that compiles back to the same tree.
Headings that are unreachable from the root are listed after it.
JSON output is canonical and includes every ID.

Without an argument, lists the compiled Manifestations.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runList(rootOpts, cmd)
			}
			return runTOC(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// openExisting opens the configured database, refusing to create one.
func openExisting(opts *RootOptions) (*store.Store, error) {
	path := opts.config().Database.Path
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s: database not found: %s", ErrCodeNotFound, path), nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeLoadFailed+": open database", err)
	}
	return st, nil
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openExisting(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}
	defer st.Close()

	list, err := st.ListManifestations(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "list manifestations", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}
	w := formatter.Writer
	if len(list) == 0 {
		fmt.Fprintln(w, "No manifestations found.")
		return nil
	}
	for _, m := range list {
		fmt.Fprintf(w, "%s  %q  %d embodiment(s)  compiler %s\n", m.ID, m.Title, m.Embodiments, m.CompilerVersion)
	}
	return nil
}

func runTOC(opts *RootOptions, manifestationID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openExisting(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}
	defer st.Close()

	t, err := toc.Build(cmd.Context(), st, manifestationID)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, store.ErrNotFound) {
			code = ErrCodeNotFound
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, code+": build toc", err)
	}

	if formatter.Format == "json" {
		data, err := toc.MarshalCanonical(t)
		if err != nil {
			return WrapExitError(ExitCommandError, "marshal toc", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	var buf bytes.Buffer
	if err := toc.RenderOutline(&buf, t); err != nil {
		return WrapExitError(ExitCommandError, "render toc", err)
	}
	_, err = formatter.Writer.Write(buf.Bytes())
	return err
}
