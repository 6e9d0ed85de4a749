package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/JonMunkholm/tabload/internal/core"
	"github.com/JonMunkholm/tabload/internal/render"
	"github.com/JonMunkholm/tabload/internal/store"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("DATABASE_URL is not set; import, list and delete need PostgreSQL")

// withService opens the configured database and runs fn against a service
// backed by it.
func (a *app) withService(ctx context.Context, fn func(*core.Service) error) error {
	if a.cfg.Database.URL == "" {
		return errNoDatabase
	}
	st, pool, err := store.OpenPostgres(ctx, a.cfg.Database.URL, a.cfg.Database.PoolOptions())
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(core.NewService(st, core.Options{
		Loader:        a.opts,
		MaxConcurrent: 1,
		Timeout:       a.cfg.Upload.Timeout,
	}))
}

func (a *app) newImportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a file and store it in PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if name == "" {
				name = filepath.Base(path)
			}
			if a.cfg.Database.URL == "" {
				return errNoDatabase
			}

			rc, err := a.opener.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer rc.Close()

			return a.withService(cmd.Context(), func(svc *core.Service) error {
				meta, err := svc.Import(cmd.Context(), name, rc)
				if err != nil {
					return err
				}
				return render.Metas(cmd.OutOrStdout(), []store.Meta{meta}, a.format)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "table name (default: the file name)")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tables stored in PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *core.Service) error {
				metas, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				return render.Metas(cmd.OutOrStdout(), metas, a.format)
			})
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *core.Service) error {
				if err := svc.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				slog.Info("table deleted", "table_id", id)
				return nil
			})
		},
	}
}
