package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"ui_resolver/domain/entities"
	"ui_resolver/infrastructure/browser"

	"github.com/spf13/cobra"
)

type findOptions struct {
	url     string
	all     bool
	explain bool
	timeout time.Duration
	driver  string
}

func newFindCommand(opts *rootOptions) *cobra.Command {
	fo := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <path>",
		Short: "Locate an object on a live page",
		Long:  "Opens --url in a browser, waits for the object to appear and prints what matched. With --explain every locator attempt is printed instead.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts.app, args[0], fo)
		},
	}

	cmd.Flags().StringVar(&fo.url, "url", "", "Page to open (required)")
	cmd.Flags().BoolVar(&fo.all, "all", false, "Return every match instead of the first")
	cmd.Flags().BoolVar(&fo.explain, "explain", false, "Print every locator attempt of one immediate search")
	cmd.Flags().DurationVar(&fo.timeout, "timeout", 0, "Wait timeout (default: the object's waitTimeout, then wait.defaultTimeout)")
	cmd.Flags().StringVar(&fo.driver, "driver", "", "Browser driver: playwright, selenium, rod (overrides config)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runFind(cmd *cobra.Command, app *App, path string, fo *findOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// definition errors are reported before a browser is started
	obj, err := app.finder.Object(path)
	if err != nil {
		return err
	}

	browserCfg := app.cfg.Browser
	if fo.driver != "" {
		browserCfg.Driver = fo.driver
	}

	session, closeBrowser, err := browser.Launch(ctx, browserCfg, fo.url, app.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBrowser(); err != nil {
			app.logger.Warnf("Failed to close browser: %v", err)
		}
	}()

	if fo.explain {
		attempts, err := app.finder.Explain(ctx, path, session)
		if err != nil {
			return err
		}
		printAttempts(out, attempts)
		return nil
	}

	timeout := app.engine.EffectiveTimeout(obj, fo.timeout)
	fmt.Fprintf(out, "Searching %s (timeout %s)\n", obj.Label(), timeout)

	if fo.all {
		elements, err := app.finder.WaitAllStrict(ctx, path, session, timeout)
		if err != nil {
			return reportNotFound(out, err)
		}
		fmt.Fprintf(out, "%d match(es)\n", len(elements))
		for _, el := range elements {
			fmt.Fprintf(out, "  %s\n", el.Describe())
		}
		return nil
	}

	el, err := app.finder.WaitOneStrict(ctx, path, session, timeout)
	if err != nil {
		return reportNotFound(out, err)
	}
	fmt.Fprintf(out, "matched %s\n", el.Describe())
	return nil
}

func reportNotFound(out io.Writer, err error) error {
	var nf *entities.ElementNotFoundError
	if errors.As(err, &nf) {
		printAttempts(out, nf.Attempts)
		return fmt.Errorf("element not found: %s", nf.Path)
	}
	return err
}

func printAttempts(out io.Writer, attempts []entities.Attempt) {
	if len(attempts) == 0 {
		fmt.Fprintln(out, "no usable locators")
		return
	}
	for i, a := range attempts {
		fmt.Fprintf(out, "%3d. %s\n", i+1, a.String())
	}
}
