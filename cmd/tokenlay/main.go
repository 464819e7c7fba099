package main

import (
	"log"
	"os"

	"github.com/tokenlay/tokenlay-go/internal/config"
	"github.com/tokenlay/tokenlay-go/pkg/tokenlay"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFiles   []string
)

var rootCmd = &cobra.Command{
	Use:           "tokenlay",
	Short:         "Probe the Tokenlay proxy and inspect the local usage ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnvFiles(envFiles)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (TOKENLAY_* variables are used when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env.local", ".env"}, "env files to load before reading config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err.Error())
		os.Exit(1)
	}
}

func loadConfig() (tokenlay.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.FromEnv()
}
