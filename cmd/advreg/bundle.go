package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/source"
)

func newBundleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle <in> <out>",
		Short: "Compile records into a binary bundle",
		Long: "Compile a JSON/YAML file or datapack directory into a binary bundle.\n" +
			"The records are validated with the configured registry settings first.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			srcCfg, err := sourceForPath(in, a.cfg.Source.DefaultNamespace)
			if err != nil {
				return err
			}
			src, err := source.FromConfig(cmd.Context(), srcCfg)
			if err != nil {
				return err
			}

			reg, err := advreg.Open(cmd.Context(), src, a.options()...)
			if err != nil {
				return err
			}

			data, err := source.EncodeBundle(records(reg))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write bundle: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d advancements to %s (%d bytes)\n", reg.Len(), out, len(data))
			return nil
		},
	}

	return cmd
}
