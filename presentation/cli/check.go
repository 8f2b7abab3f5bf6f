package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"ui_resolver/application/repository"
	"ui_resolver/infrastructure/storage"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	checkConcurrency = 8
	watchDebounce    = 300 * time.Millisecond
)

type checkResult struct {
	Path string
	Err  error
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load and merge every stored definition",
		Long:  "Resolves every definition in the repository and reports missing parents, cycles and malformed files. With --watch the check reruns whenever a definition changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			out := cmd.OutOrStdout()

			failed, err := runCheck(cmd.Context(), app.repo, out)
			if err != nil {
				return err
			}
			if !watch {
				if failed > 0 {
					return fmt.Errorf("%d definition(s) failed to resolve", failed)
				}
				return nil
			}

			root := app.repo.Root()
			watcher, err := storage.NewDefinitionWatcher(root, watchDebounce, app.logger)
			if err != nil {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			defer watcher.Close()

			app.logger.Infof("Watching %s for changes", root)
			err = app.repo.Watch(cmd.Context(), watcher, func(files []string) {
				if _, err := runCheck(cmd.Context(), app.repo, out); err != nil {
					app.logger.Warnf("check interrupted: %v", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run the check whenever a definition file changes")
	return cmd
}

// runCheck prints one line per definition and returns the failure count
func runCheck(ctx context.Context, repo *repository.ObjectRepository, out io.Writer) (int, error) {
	results, err := checkDefinitions(ctx, repo)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", r.Path)
	}
	fmt.Fprintf(out, "%d checked, %d failed, %d cached\n", len(results), failed, repo.CachedCount())
	return failed, nil
}

// checkDefinitions resolves every stored path concurrently. Per-path
// failures are collected, not returned.
func checkDefinitions(ctx context.Context, repo *repository.ObjectRepository) ([]checkResult, error) {
	paths, err := repo.List("")
	if err != nil {
		return nil, err
	}

	results := make([]checkResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)

	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := repo.GetByPath(p)
			results[i] = checkResult{Path: p, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
