package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewgate/crewgate/internal/adapter/outbound/hrapi"
)

var (
	educationEmployee  string
	educationDegree    string
	educationSchool    string
	educationGrade     string
	educationStartDate string
	educationEndDate   string
)

var educationCmd = &cobra.Command{
	Use:   "education",
	Short: "Manage education records",
	Long: `List, add, update, or delete the education records on your
profile, or on another employee's when you have the role to edit them.`,
}

var educationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List education records",
	RunE:  runEducationList,
}

var educationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an education record",
	RunE:  runEducationAdd,
}

var educationUpdateCmd = &cobra.Command{
	Use:   "update <education-id>",
	Short: "Update an education record",
	Args:  cobra.ExactArgs(1),
	RunE:  runEducationUpdate,
}

var educationDeleteCmd = &cobra.Command{
	Use:   "delete <education-id>",
	Short: "Delete an education record",
	Args:  cobra.ExactArgs(1),
	RunE:  runEducationDelete,
}

func init() {
	educationListCmd.Flags().StringVar(&educationEmployee, "employee", "", "Employee ID (default: yourself)")
	for _, c := range []*cobra.Command{educationAddCmd, educationUpdateCmd} {
		c.Flags().StringVar(&educationDegree, "degree", "", "Degree or qualification")
		c.Flags().StringVar(&educationSchool, "school", "", "School or university name")
		c.Flags().StringVar(&educationGrade, "grade", "", "Grade or result")
		c.Flags().StringVar(&educationStartDate, "start", "", "Start date (YYYY-MM-DD)")
		c.Flags().StringVar(&educationEndDate, "end", "", "End date (YYYY-MM-DD)")
	}
	educationCmd.AddCommand(educationListCmd)
	educationCmd.AddCommand(educationAddCmd)
	educationCmd.AddCommand(educationUpdateCmd)
	educationCmd.AddCommand(educationDeleteCmd)
	rootCmd.AddCommand(educationCmd)
}

func runEducationList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	me, err := a.requireIdentity(ctx)
	if err != nil {
		return err
	}

	employeeID := educationEmployee
	if employeeID == "" {
		employeeID = me.UUID
	}

	records, err := a.client.Educations(ctx, employeeID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No education records.")
		return nil
	}
	for _, r := range records {
		line := fmt.Sprintf("%-36s %-30s %s", r.UUID, r.Degree, r.SchoolName)
		if r.StartDate != "" {
			period := r.StartDate
			if r.EndDate != "" {
				period += " to " + r.EndDate
			}
			line += "  (" + period + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func runEducationAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	me, err := a.requireIdentity(ctx)
	if err != nil {
		return err
	}

	if educationDegree == "" || educationSchool == "" || educationStartDate == "" {
		return fmt.Errorf("--degree, --school, and --start are required")
	}

	created, err := a.client.AddEducation(ctx, hrapi.Education{
		EmployeeUUID: me.UUID,
		Degree:       educationDegree,
		SchoolName:   educationSchool,
		Grade:        educationGrade,
		StartDate:    educationStartDate,
		EndDate:      educationEndDate,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Education record added: %s\n", created.UUID)
	return nil
}

func runEducationUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	me, err := a.requireIdentity(ctx)
	if err != nil {
		return err
	}

	if _, err := a.client.UpdateEducation(ctx, args[0], hrapi.Education{
		EmployeeUUID: me.UUID,
		Degree:       educationDegree,
		SchoolName:   educationSchool,
		Grade:        educationGrade,
		StartDate:    educationStartDate,
		EndDate:      educationEndDate,
	}); err != nil {
		return err
	}
	fmt.Println("Education record updated.")
	return nil
}

func runEducationDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	if err := a.client.DeleteEducation(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Education record deleted.")
	return nil
}
