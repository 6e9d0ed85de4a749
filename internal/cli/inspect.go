package cli

import (
	"github.com/JonMunkholm/tabload/internal/render"
	"github.com/JonMunkholm/tabload/internal/stats"
	"github.com/spf13/cobra"
)

func (a *app) newShowCmd() *cobra.Command {
	var head, tail int

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print a table, or its first or last rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case cmd.Flags().Changed("head"):
				t = t.Head(head)
			case cmd.Flags().Changed("tail"):
				t = t.Tail(tail)
			}
			return render.Table(cmd.OutOrStdout(), t, a.format)
		},
	}
	cmd.Flags().IntVar(&head, "head", 10, "print only the first N rows (negative: all but the last N)")
	cmd.Flags().IntVar(&tail, "tail", 10, "print only the last N rows (negative: all but the first N)")
	cmd.MarkFlagsMutuallyExclusive("head", "tail")
	return cmd
}

func (a *app) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Summary statistics of the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.Summary(cmd.OutOrStdout(), stats.Describe(t), a.format)
		},
	}
}

func (a *app) newNullsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nulls FILE",
		Short: "Count missing values per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.NullCounts(cmd.OutOrStdout(), stats.NullCounts(t), a.format)
		},
	}
}
