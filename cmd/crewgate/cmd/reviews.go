package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reviewsEmployee string

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Show performance reviews",
	Long: `Show quarterly performance reviews for yourself, or for another
employee when you have the role to see them.`,
	RunE: runReviews,
}

func init() {
	reviewsCmd.Flags().StringVar(&reviewsEmployee, "employee", "", "Employee ID (default: yourself)")
	rootCmd.AddCommand(reviewsCmd)
}

func runReviews(cmd *cobra.Command, args []string) error {
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

	employeeID := reviewsEmployee
	if employeeID == "" {
		employeeID = me.UUID
	}

	reviews, err := a.client.ReviewsList(ctx, employeeID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Println("No reviews.")
		return nil
	}
	for _, r := range reviews {
		fmt.Printf("%s %d  rating %d/5  %s\n", r.Quarter, r.Year, r.Rating, r.Status)
		if r.Comments != "" {
			fmt.Printf("  %s\n", r.Comments)
		}
	}
	return nil
}
