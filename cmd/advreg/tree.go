package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/advancement"
)

func newTreeCommand(a *app) *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "tree [root]",
		Short: "Print the advancement tree",
		Long:  "Print the advancement tree below root, or every tree when no root is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}

			var roots []string
			if len(args) == 1 {
				rec, ok := reg.GetNamespaced(args[0])
				if !ok {
					return advreg.NewNotFoundError("tree", args[0])
				}
				roots = append(roots, rec.ID)
			} else {
				for _, rec := range reg.Roots() {
					roots = append(roots, rec.ID)
				}
			}

			out := cmd.OutOrStdout()
			for _, root := range roots {
				reg.Walk(root, func(rec *advancement.Record, depth int) bool {
					fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), treeLine(rec))
					return maxDepth <= 0 || depth+1 < maxDepth
				})
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "depth", 0, "maximum number of levels to print (0 for all)")

	return cmd
}

func treeLine(rec *advancement.Record) string {
	if rec.Display == nil {
		return rec.ID
	}
	title := rec.Display.Title.String()
	if title == "" {
		return rec.ID
	}
	return fmt.Sprintf("%s  %q", rec.ID, title)
}
