package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in profile",
	Long:  `Confirm the current session against the backend and print the signed-in profile.`,
	RunE:  runWhoAmI,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoAmI(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("%s %s <%s>\n", emp.FirstName, emp.LastName, emp.Email)
	fmt.Printf("  Role:       %s\n", emp.Role)
	if emp.Department != "" {
		fmt.Printf("  Department: %s\n", emp.Department)
	}
	fmt.Printf("  ID:         %s\n", emp.UUID)
	return nil
}
