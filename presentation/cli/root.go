package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ui_resolver/infrastructure/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envPath    string
	dir        string
	app        *App
}

// NewRootCommand - builds the resolver command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ui-resolver",
		Short:         "Resolve declarative UI object definitions to live elements",
		Long:          "Loads UI object definitions from a repository directory, resolves their inheritance chains and locates them in a live browser session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "resolver.yaml", "Path to the YAML config file (optional)")
	root.PersistentFlags().StringVar(&opts.envPath, "env", ".env", "Path to a .env file (optional)")
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "Object repository directory (overrides config)")

	root.AddCommand(
		newShowCommand(opts),
		newListCommand(opts),
		newCheckCommand(opts),
		newFindCommand(opts),
	)

	return root
}

func (o *rootOptions) init(ctx context.Context) error {
	cfg, err := config.Load(o.configPath, o.envPath)
	if err != nil {
		return err
	}
	if o.dir != "" {
		cfg.Repository.Dir = o.dir
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}

	o.app = NewApp(ctx, cfg, logger)
	return nil
}

// Execute - runs the CLI until completion or interrupt
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
