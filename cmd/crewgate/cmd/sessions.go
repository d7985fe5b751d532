package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sessionsEmail  string
	sessionsActive bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List or revoke active sessions (admins)",
	Long: `Inspect the device sessions the server keeps per employee, and
revoke individual sessions. Requires an admin role.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List device sessions grouped by employee",
	RunE:  runSessionsList,
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke <session-id>",
	Short: "Revoke one device session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsRevoke,
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsEmail, "email", "", "Filter by employee email")
	sessionsListCmd.Flags().BoolVar(&sessionsActive, "active", true, "Only active sessions")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRevokeCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	grouped, err := a.client.EmployeeSessions(ctx, sessionsEmail, sessionsActive)
	if err != nil {
		return err
	}
	if len(grouped) == 0 {
		fmt.Println("No sessions.")
		return nil
	}
	for email, sessions := range grouped {
		fmt.Printf("%s:\n", email)
		for _, s := range sessions {
			state := "inactive"
			if s.Active {
				state = "active"
			}
			fmt.Printf("  %-36s %-8s %-20s %s\n", s.UUID, state, s.Device, s.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func runSessionsRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	if err := a.client.DeleteEmployeeSession(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Session revoked.")
	return nil
}
