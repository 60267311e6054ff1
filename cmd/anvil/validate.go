package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillforge-hq/anvil/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		enabled := 0
		for _, p := range cfg.Providers {
			if p.Enabled == nil || *p.Enabled {
				enabled++
			}
		}

		fmt.Printf("Configuration valid: %s\n", cfgFile)
		fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  providers:      %d configured, %d enabled\n", len(cfg.Providers), enabled)
		fmt.Printf("  usage backend:  %s\n", cfg.Usage.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
