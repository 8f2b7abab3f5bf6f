package cli

import (
	"github.com/spf13/cobra"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print the merged definition of an object",
		Long:  "Resolves the object's parentPath chain and prints the effective definition the resolver would search with.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := opts.app.finder.Object(args[0])
			if err != nil {
				return err
			}
			return writeFormatted(cmd.OutOrStdout(), format, obj)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatYAML, "Output format: yaml, json")
	return cmd
}
