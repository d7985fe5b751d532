// Package cmd provides the CLI commands for Crewgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crewgate/crewgate/internal/config"
)

var cfgFile string
var devMode bool

var rootCmd = &cobra.Command{
	Use:   "crewgate",
	Short: "Crewgate - Crewdesk HR terminal client",
	Long: `Crewgate is the terminal client for the Crewdesk HR platform.

It keeps a durable session on disk, renews credentials transparently,
and confirms your identity before every protected operation, so commands
either run as you or tell you to sign in again.

Quick start:
  1. Create a config file: crewgate config-init
  2. Sign in:              crewgate login
  3. Check who you are:    crewgate whoami

Configuration:
  Config is loaded from crewgate.yaml in the current directory,
  $HOME/.crewgate/, or /etc/crewgate/.

  Environment variables can override config values with the CREWGATE_ prefix.
  Example: CREWGATE_API_BASE_URL=https://hr.crewdesk.example

Commands:
  login        Sign in with password or --sso
  logout       Sign out and clear the stored session
  whoami       Show the signed-in profile
  team         Show your team
  employees    List employees
  register     Register a new employee (managers)
  attendance   Show attendance records
  education    Manage education records
  reviews      Show performance reviews
  sessions     List or revoke active sessions (admins)
  password     Password recovery flows
  reset        Remove the stored session file
  config-init  Write a sample config file
  version      Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./crewgate.yaml)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging, trace export)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
