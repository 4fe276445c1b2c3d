package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg/query"
)

func newQueryCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query <expr>",
		Short: "List advancements matching a CEL expression",
		Long: "List advancements matching a CEL expression, in load order.\n\n" +
			"Variables: id, parent, namespace, category, name, telemetry, has_display,\n" +
			"frame, hidden, title.\n\n" +
			"Example:\n" +
			"  advreg query 'category == \"story\" && frame == \"goal\"'",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := query.Compile(args[0], query.WithDefaultNamespace(a.cfg.Source.DefaultNamespace))
			if err != nil {
				return err
			}

			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}

			matches, err := filter.Select(reg)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			for _, rec := range matches {
				fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print full records as a JSON array")

	return cmd
}
