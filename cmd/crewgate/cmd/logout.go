package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Long: `Sign out of Crewdesk.

The local session file is removed first, so you are signed out even when
the backend cannot be reached; the server-side session is then revoked
on a best-effort basis.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.provider.Init(ctx); err != nil {
		return err
	}
	if err := a.provider.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}
