package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/health"
)

func newValidateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configured records for dangling parents and cycles",
		Long: "Check the configured records for dangling parents and cycles.\n" +
			"Cycles always fail; dangling parents fail when registry.strict_parents is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, release, err := a.openSource(ctx)
			if err != nil {
				return err
			}
			defer release()

			// Build leniently so every problem is reported, not just the first.
			reg, err := advreg.Open(ctx, src,
				advreg.WithLogger(a.logger),
				advreg.WithNamespace(a.cfg.Registry.Namespace),
			)
			if err != nil {
				return err
			}

			report := reg.Validate()
			status := health.RegistryCheck(reg)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:   %s\n", src.Name())
			fmt.Fprintf(out, "records:  %d\n", reg.Len())
			fmt.Fprintf(out, "roots:    %d\n", len(reg.Roots()))
			fmt.Fprintf(out, "status:   %s\n", status.Status)
			for _, d := range report.Dangling {
				fmt.Fprintf(out, "dangling: %s -> %s\n", d.ID, d.Parent)
			}
			for _, cycle := range report.Cycles {
				fmt.Fprintf(out, "cycle:    %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
			}

			if len(report.Cycles) > 0 {
				return advreg.NewIntegrityError("validate", &advancement.CycleError{Path: report.Cycles[0]})
			}
			if len(report.Dangling) > 0 && a.cfg.Registry.StrictParents {
				return advreg.NewIntegrityError("validate", report.Dangling[0])
			}
			return nil
		},
	}

	return cmd
}
