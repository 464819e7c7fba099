package main

import (
	"fmt"

	"github.com/tokenlay/tokenlay-go/pkg/tokenlay"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the proxy is reachable and accepts the proxy key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, err := tokenlay.New(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		result := client.HealthCheck(cmd.Context())
		if !result.OK() {
			return fmt.Errorf("%s: %s", client.Config().ProxyBaseURL, result.Message)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.Config().ProxyBaseURL, result.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
