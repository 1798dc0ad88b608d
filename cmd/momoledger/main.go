// Command momoledger ingests mobile money SMS backups into a relational store
// and serves the stored transactions over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayitare/momoledger/internal/plugins"
	"github.com/kayitare/momoledger/pkg/logging"
	smsxmlreader "github.com/kayitare/momoledger/pkg/plugins/readers/smsxml"
	csvwriter "github.com/kayitare/momoledger/pkg/plugins/writers/csv"
	jsonwriter "github.com/kayitare/momoledger/pkg/plugins/writers/json"
	postgreswriter "github.com/kayitare/momoledger/pkg/plugins/writers/postgres"
	sqlitewriter "github.com/kayitare/momoledger/pkg/plugins/writers/sqlite"
)

var configPath string

func main() {
	logging.Setup(logging.FromEnv())

	root := &cobra.Command{
		Use:   "momoledger",
		Short: "Mobile money SMS ledger",
		Long: "momoledger parses mobile money SMS backup exports, classifies the " +
			"transactions they describe, stores them in a relational database and " +
			"serves them over a read-only HTTP API.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")

	root.AddCommand(newIngestCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newPluginsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildRegistry registers every compiled-in reader and writer plugin.
func buildRegistry() (*plugins.Registry, error) {
	registry := plugins.NewRegistry()

	if err := registry.RegisterReader(&smsxmlreader.Plugin{}); err != nil {
		return nil, err
	}

	for _, plugin := range []plugins.WriterPlugin{
		&sqlitewriter.Plugin{},
		&postgreswriter.Plugin{},
		&csvwriter.Plugin{},
		&jsonwriter.Plugin{},
	} {
		if err := registry.RegisterWriter(plugin); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
