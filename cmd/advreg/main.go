// Command advreg inspects, converts and serves advancement registries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "advreg",
		Short: "Static advancement registry",
		Long: "advreg loads advancement records from a file, datapack, bundle, Redis or etcd,\n" +
			"builds an immutable registry and answers lookups from the command line or over gRPC.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to advreg.yaml or a directory containing it")
	flags.StringVarP(&a.file, "file", "f", "", "read records from a JSON/YAML file, bundle or datapack directory instead of the configured source")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newGetCommand(a))
	root.AddCommand(newTreeCommand(a))
	root.AddCommand(newValidateCommand(a))
	root.AddCommand(newQueryCommand(a))
	root.AddCommand(newBundleCommand(a))
	root.AddCommand(newPushCommand(a))
	root.AddCommand(newServeCommand(a))

	root.SilenceErrors = true
	root.SilenceUsage = true

	return root
}
