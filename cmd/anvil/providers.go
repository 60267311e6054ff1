package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"skillforge-hq/anvil/pkg/cli"
	"skillforge-hq/anvil/pkg/config"
	"skillforge-hq/anvil/pkg/providers"
	"skillforge-hq/anvil/pkg/registry"
)

var (
	probeProviders  bool
	providersOutput string
)

// providerRow is one line of the providers listing.
type providerRow struct {
	Priority  int          `json:"priority"`
	Identity  providers.ID `json:"identity"`
	Model     string       `json:"model"`
	Available *bool        `json:"available,omitempty"`
}

// providerListing renders as a table or JSON via pkg/cli.
type providerListing []providerRow

func (l providerListing) Header() []string {
	if len(l) > 0 && l[0].Available != nil {
		return []string{"PRIORITY", "IDENTITY", "MODEL", "AVAILABLE"}
	}
	return []string{"PRIORITY", "IDENTITY", "MODEL"}
}

func (l providerListing) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		row := []string{fmt.Sprintf("%d", r.Priority), string(r.Identity), r.Model}
		if r.Available != nil {
			row = append(row, fmt.Sprintf("%t", *r.Available))
		}
		rows = append(rows, row)
	}
	return rows
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers and their fallback order",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseFormat(providersOutput)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		// Registry construction logs skip warnings; keep them out of the
		// listing unless the user asked for verbosity.
		if !verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		}

		reg := registry.Build(cfg.ProviderConfigs())

		listing := make(providerListing, 0, reg.Len())
		for _, a := range reg.OrderedAdapters() {
			c := a.Config()
			row := providerRow{Priority: c.Priority, Identity: c.Identity, Model: c.Model}
			if probeProviders {
				available := a.IsAvailable(cmd.Context())
				row.Available = &available
			}
			listing = append(listing, row)
		}

		return cli.Render(cmd.OutOrStdout(), format, listing)
	},
}

func init() {
	providersCmd.Flags().BoolVar(&probeProviders, "probe", false, "probe each provider's availability")
	providersCmd.Flags().StringVarP(&providersOutput, "output", "o", "table", "output format (table or json)")
	rootCmd.AddCommand(providersCmd)
}
