package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/health"
	"github.com/zero-day-ai/advreg/serve"
	"github.com/zero-day-ai/advreg/source"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups over gRPC",
		Long: "Serve the advreg.v1.Lookup gRPC service and the standard health service.\n" +
			"Redis and etcd sources are watched and the registry is rebuilt on change.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			src, release, err := a.openSource(ctx)
			if err != nil {
				return err
			}
			defer release()

			live, err := advreg.NewLive(ctx, src, a.options()...)
			if err != nil {
				return err
			}

			startup := health.Combine(
				health.RegistryCheck(live.Registry()),
				health.SourceCheck(ctx, a.cfg.Source),
			)
			a.logger.Info("startup health", "status", startup.Status, "message", startup.Message)

			opts := []serve.Option{
				serve.WithServeConfig(a.cfg.Serve),
				serve.WithLogger(a.logger),
			}
			if cmd.Flags().Changed("port") {
				opts = append(opts, serve.WithPort(port))
			}

			srv, err := serve.NewServer(live, opts...)
			if err != nil {
				return err
			}

			live.OnSwap(func(old, cur *advancement.Registry) {
				a.logger.Info("registry swapped",
					"previous", old.Snapshot().ID,
					"current", cur.Snapshot().ID,
					"records", cur.Len())
				srv.UpdateHealth()
			})

			if _, ok := src.(source.Watcher); ok && watch {
				go func() {
					if err := live.Watch(ctx); err != nil && ctx.Err() == nil {
						a.logger.Error("watch stopped", "source", src.Name(), "error", err)
					}
				}()
			}

			err = srv.Serve(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides serve.port)")
	cmd.Flags().BoolVar(&watch, "watch", true, "rebuild the registry when a Redis or etcd source changes")

	return cmd
}
