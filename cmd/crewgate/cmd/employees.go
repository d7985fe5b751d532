package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	employeesPage    int
	employeesSize    int
	employeesSortBy  string
	employeesOrder   string
	employeesManager string
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List employees",
	Long: `List employees, paginated, or the direct reports of one manager.

Examples:
  # First page, default sorting
  crewgate employees

  # Third page, 50 per page, sorted by last name descending
  crewgate employees --page 3 --size 50 --sort lastName --order desc

  # Direct reports of a manager
  crewgate employees --manager 7f9c0e...`,
	RunE: runEmployees,
}

func init() {
	employeesCmd.Flags().IntVar(&employeesPage, "page", 1, "Page number")
	employeesCmd.Flags().IntVar(&employeesSize, "size", 20, "Page size")
	employeesCmd.Flags().StringVar(&employeesSortBy, "sort", "lastName", "Sort field")
	employeesCmd.Flags().StringVar(&employeesOrder, "order", "asc", "Sort order: asc or desc")
	employeesCmd.Flags().StringVar(&employeesManager, "manager", "", "List direct reports of this manager ID instead")
	rootCmd.AddCommand(employeesCmd)
}

func runEmployees(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	if employeesManager != "" {
		reports, err := a.client.EmployeesByManager(ctx, employeesManager)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No direct reports.")
			return nil
		}
		for _, e := range reports {
			fmt.Printf("%-30s %-30s %s\n", e.FirstName+" "+e.LastName, e.Email, e.Role)
		}
		return nil
	}

	page, err := a.client.EmployeesPage(ctx, employeesPage, employeesSize, employeesSortBy, employeesOrder)
	if err != nil {
		return err
	}
	for _, e := range page.Employees {
		fmt.Printf("%-30s %-30s %s\n", e.FirstName+" "+e.LastName, e.Email, e.Role)
	}
	fmt.Printf("\nPage %d of %d (%d employees)\n", page.Page, page.TotalPages, page.TotalCount)
	return nil
}
