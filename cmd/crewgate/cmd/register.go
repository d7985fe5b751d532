package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewgate/crewgate/internal/adapter/outbound/hrapi"
)

var (
	registerEmail        string
	registerFirstName    string
	registerLastName     string
	registerRole         string
	registerManager      string
	registerDepartment   string
	registerListManagers bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new employee (managers)",
	Long: `Register a new employee. Requires a manager or admin role.

Use --list-managers first to find the manager ID to assign.

Examples:
  crewgate register --list-managers
  crewgate register --email new@example.com --first-name Ada --last-name Osei \
      --role employee --manager 7f9c0e... --department Engineering`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&registerRole, "role", "employee", "Platform role")
	registerCmd.Flags().StringVar(&registerManager, "manager", "", "Manager ID")
	registerCmd.Flags().StringVar(&registerDepartment, "department", "", "Department")
	registerCmd.Flags().BoolVar(&registerListManagers, "list-managers", false, "List active managers and exit")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	if registerListManagers {
		managers, err := a.client.ActiveManagers(ctx)
		if err != nil {
			return err
		}
		if len(managers) == 0 {
			fmt.Println("No active managers.")
			return nil
		}
		for _, m := range managers {
			fmt.Printf("%-36s %s %s <%s>\n", m.UUID, m.FirstName, m.LastName, m.Email)
		}
		return nil
	}

	if registerEmail == "" || registerFirstName == "" || registerLastName == "" {
		return fmt.Errorf("--email, --first-name, and --last-name are required")
	}

	err = a.client.AddEmployee(ctx, hrapi.EmployeeRequest{
		Email:       registerEmail,
		FirstName:   registerFirstName,
		LastName:    registerLastName,
		Role:        registerRole,
		ManagerUUID: registerManager,
		Department:  registerDepartment,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s %s <%s>\n", registerFirstName, registerLastName, registerEmail)
	return nil
}
