package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crewgate/crewgate/internal/config"
)

var configInitOutput string

var configInitCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Write a sample config file",
	Long: `Write a crewgate.yaml with the default settings filled in.

Edit api.base_url to point at your Crewdesk backend. Fill in the
provider section to enable SSO login; leave it empty for password login.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitOutput, "output", "crewgate.yaml", "Where to write the config file")
	rootCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configInitOutput); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use --output", configInitOutput)
	}

	sample := config.Config{
		API: config.APIConfig{
			BaseURL: "https://hr.crewdesk.example",
			Timeout: "30s",
		},
		Provider: config.ProviderConfig{
			IssuerURL:        "",
			Realm:            "",
			ClientID:         "",
			InitTimeout:      "8s",
			MinTokenValidity: "30s",
		},
		Session: config.SessionConfig{
			Path: config.DefaultSessionPath(),
		},
		LogLevel: "info",
	}

	out, err := yaml.Marshal(&sample)
	if err != nil {
		return fmt.Errorf("marshal sample config: %w", err)
	}
	if err := os.WriteFile(configInitOutput, out, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", configInitOutput, err)
	}

	fmt.Printf("Wrote %s\n", configInitOutput)
	return nil
}
