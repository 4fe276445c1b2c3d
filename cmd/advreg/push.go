package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/source"
)

// publisher is implemented by sources that can be written to.
type publisher interface {
	source.Source
	Publish(ctx context.Context, records []advancement.Record) error
}

func newPushCommand(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Publish records to the configured Redis or etcd source",
		Long: "Validate records and replace the contents of the configured Redis or etcd\n" +
			"source with them. Records come from --from, or the embedded data set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var input source.Source = source.Embedded()
			if from != "" {
				srcCfg, err := sourceForPath(from, a.cfg.Source.DefaultNamespace)
				if err != nil {
					return err
				}
				if input, err = source.FromConfig(ctx, srcCfg); err != nil {
					return err
				}
			}

			reg, err := advreg.Open(ctx, input, a.options()...)
			if err != nil {
				return err
			}

			target, release, err := a.openSource(ctx)
			if err != nil {
				return err
			}
			defer release()

			pub, ok := target.(publisher)
			if !ok {
				return advreg.NewConfigurationError("push",
					fmt.Errorf("%w: source %s is read-only; configure a redis or etcd source", advreg.ErrInvalidConfig, target.Name()))
			}
			if err := pub.Publish(ctx, records(reg)); err != nil {
				return advreg.NewSourceError("push", err).WithContext(map[string]any{"source": pub.Name()})
			}

			a.logger.Info("records published", "source", pub.Name(), "records", reg.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d advancements to %s\n", reg.Len(), pub.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "JSON/YAML file, bundle or datapack directory to publish")

	return cmd
}
