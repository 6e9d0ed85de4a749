package cli

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/tabload/internal/config"
	"github.com/JonMunkholm/tabload/internal/stats"
	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/spf13/cobra"
)

type exportFlags struct {
	out          string
	outDelimiter string
	dropna       string
	fill         string
	ffill        bool
	bfill        bool
}

func (a *app) newExportCmd() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a cleaned copy of a table",
		Long: `Write FILE to --out after optional cleanup. Steps run in this order:
--dropna, --ffill, --bfill, --fill. Use --out - for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.out, "out", "o", "", "output path, or - for stdout")
	fl.StringVar(&f.outDelimiter, "out-delimiter", "", "delimiter for the output (default: the input delimiter)")
	fl.StringVar(&f.dropna, "dropna", "", "drop rows with any or all fields missing")
	fl.StringVar(&f.fill, "fill", "", "replace remaining missing fields with this value")
	fl.BoolVar(&f.ffill, "ffill", false, "fill missing fields from the previous row")
	fl.BoolVar(&f.bfill, "bfill", false, "fill missing fields from the next row")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, path string, f exportFlags) error {
	delim := a.opts.Delimiter
	if f.outDelimiter != "" {
		d, err := config.ParseDelimiter(f.outDelimiter)
		if err != nil {
			return fmt.Errorf("%w: %v", table.ErrInvalidDelimiter, err)
		}
		delim = d
	}

	var how stats.How
	if f.dropna != "" {
		h, err := stats.ParseHow(f.dropna)
		if err != nil {
			return err
		}
		how = h
	}

	t, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}

	before := t.Len()
	if f.dropna != "" {
		t = stats.DropMissing(t, how)
		slog.Debug("dropped rows", "how", f.dropna, "dropped", before-t.Len())
	}
	if f.ffill {
		t = stats.ForwardFill(t)
	}
	if f.bfill {
		t = stats.BackwardFill(t)
	}
	if cmd.Flags().Changed("fill") {
		t = stats.FillMissing(t, f.fill)
	}

	if f.out == "-" {
		return table.Write(cmd.OutOrStdout(), t, delim)
	}
	if err := table.Save(f.out, t, delim); err != nil {
		return err
	}
	slog.Info("table exported", "path", f.out, "rows", t.Len())
	return nil
}
