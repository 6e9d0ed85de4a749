// Package cli implements the tabload command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/JonMunkholm/tabload/internal/config"
	"github.com/JonMunkholm/tabload/internal/core"
	"github.com/JonMunkholm/tabload/internal/logging"
	"github.com/JonMunkholm/tabload/internal/render"
	"github.com/JonMunkholm/tabload/internal/source"
	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

type rootFlags struct {
	delimiter string
	strict    bool
	sanitize  bool
	format    string
	verbose   bool
}

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	flags  rootFlags
	cfg    *config.Config
	format render.Format
	opts   table.Options
	opener *source.Opener
}

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tabload",
		Short: "Load delimited text files and inspect them",
		Long: `tabload reads a delimiter-separated file (CSV by default) into a table of
text fields and prints it, summarizes it, counts missing values or writes a
cleaned copy. Inputs may be local paths, "-" for stdin, or s3://bucket/key.

Loader settings come from LOADER_DELIMITER, LOADER_STRICT and
LOADER_SANITIZE_UTF8 (a .env file is read if present); flags override them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.delimiter, "delimiter", "d", "", `field delimiter: one character, or "tab"`)
	pf.BoolVar(&a.flags.strict, "strict", false, "fail on rows whose field count differs from the header")
	pf.BoolVar(&a.flags.sanitize, "sanitize", false, "replace invalid UTF-8 bytes instead of failing")
	pf.StringVarP(&a.flags.format, "format", "f", "text", "output format: text, json, yaml or csv")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(
		a.newShowCmd(),
		a.newDescribeCmd(),
		a.newNullsCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newListCmd(),
		a.newDeleteCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skip the root setup so version works with a broken environment.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tabload %s (%s) %s/%s\n", version, commit, runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Execute runs the command line and reports a failure on stderr.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		printError(cmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintf(w, "Hint: %s\n", core.FormatUserError(err))
	}
}

// setup loads the environment, configures logging and resolves loader
// options. Flags set on the command line win over the environment.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	level := "warn"
	if a.flags.verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		cfg.Loader.Delimiter = a.flags.delimiter
	}
	if flags.Changed("strict") {
		cfg.Loader.Strict = a.flags.strict
	}
	if flags.Changed("sanitize") {
		cfg.Loader.SanitizeUTF8 = a.flags.sanitize
	}
	if a.opts, err = cfg.Loader.Options(); err != nil {
		return fmt.Errorf("%w: %v", table.ErrInvalidDelimiter, err)
	}

	if a.format, err = render.ParseFormat(a.flags.format); err != nil {
		return err
	}

	if a.opener == nil {
		a.opener = &source.Opener{Stdin: cmd.InOrStdin()}
	}
	slog.Debug("loader configured",
		"delimiter", string(a.opts.Delimiter),
		"strict", a.opts.Strict,
		"sanitize_utf8", a.opts.SanitizeUTF8,
	)
	return nil
}

// load reads the table at path with the resolved options.
func (a *app) load(ctx context.Context, path string) (*table.Table, error) {
	rc, err := a.opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := table.Read(rc, a.opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if bad := t.Mismatched(); len(bad) > 0 {
		slog.Warn("rows with unexpected field count",
			"path", path,
			"count", len(bad),
			"first_row", bad[0],
			"columns", t.Width(),
		)
	}
	slog.Debug("table loaded", "path", path, "rows", t.Len(), "columns", t.Width())
	return t, nil
}
