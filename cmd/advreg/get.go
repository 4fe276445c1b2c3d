package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/advancement"
)

func newGetCommand(a *app) *cobra.Command {
	var literal bool

	cmd := &cobra.Command{
		Use:   "get <id>...",
		Short: "Print advancement records by id",
		Long: "Print advancement records by id. Ids may carry the registry namespace\n" +
			"(minecraft:story/root) unless --literal is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}

			lookup := reg.GetNamespaced
			if literal {
				lookup = reg.Get
			}

			var found []*advancement.Record
			var misses []error
			for _, id := range args {
				rec, ok := lookup(id)
				if !ok {
					misses = append(misses, advreg.NewNotFoundError("get", id))
					continue
				}
				found = append(found, rec)
			}

			for _, rec := range found {
				if err := writeJSON(cmd.OutOrStdout(), rec); err != nil {
					return err
				}
			}
			return errors.Join(misses...)
		},
	}

	cmd.Flags().BoolVar(&literal, "literal", false, "look ids up exactly as given, without stripping the namespace")

	return cmd
}
