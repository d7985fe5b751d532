package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var attendanceEmployee string

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Show attendance records",
	Long: `Show attendance records for yourself, or for another employee
when you have the role to see them.`,
	RunE: runAttendance,
}

func init() {
	attendanceCmd.Flags().StringVar(&attendanceEmployee, "employee", "", "Employee ID (default: yourself)")
	rootCmd.AddCommand(attendanceCmd)
}

func runAttendance(cmd *cobra.Command, args []string) error {
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

	employeeID := attendanceEmployee
	if employeeID == "" {
		employeeID = me.UUID
	}

	records, err := a.client.AttendanceList(ctx, employeeID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No attendance records.")
		return nil
	}
	for _, r := range records {
		line := fmt.Sprintf("%-12s %-10s", r.Date, r.Status)
		if !r.ClockIn.IsZero() {
			line += "  in " + r.ClockIn.Format("15:04")
		}
		if !r.ClockOut.IsZero() {
			line += "  out " + r.ClockOut.Format("15:04")
		}
		fmt.Println(line)
	}
	return nil
}
