package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Show your team",
	Long:  `Show your manager and teammates as the backend sees them.`,
	RunE:  runTeam,
}

func init() {
	rootCmd.AddCommand(teamCmd)
}

func runTeam(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	emp, err := a.requireIdentity(ctx)
	if err != nil {
		return err
	}

	team, err := a.client.FullTeam(ctx, emp.UUID)
	if err != nil {
		return err
	}

	if team.Manager.UUID != "" {
		fmt.Printf("Manager: %s %s <%s>\n", team.Manager.FirstName, team.Manager.LastName, team.Manager.Email)
	}
	if len(team.Members) == 0 {
		fmt.Println("No teammates found.")
		return nil
	}
	fmt.Println("Team:")
	for _, m := range team.Members {
		fmt.Printf("  %-30s %s\n", m.FirstName+" "+m.LastName, m.Email)
	}
	return nil
}
