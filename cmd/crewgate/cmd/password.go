package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewgate/crewgate/internal/adapter/outbound/hrapi"
)

var (
	passwordEmail string
	passwordOTP   string
	passwordNew   string
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password recovery flows",
	Long: `Start and complete the password-reset flow. These commands work
without a session.

Examples:
  # Request a one-time code by email
  crewgate password forgot --email ada@example.com

  # Set a new password with the code
  crewgate password reset --email ada@example.com --otp 123456 --new-password 'S3cret!'`,
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Request a password-reset code",
	RunE:  runPasswordForgot,
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password with a reset code",
	RunE:  runPasswordReset,
}

func init() {
	passwordForgotCmd.Flags().StringVar(&passwordEmail, "email", "", "Email address")
	passwordResetCmd.Flags().StringVar(&passwordEmail, "email", "", "Email address")
	passwordResetCmd.Flags().StringVar(&passwordOTP, "otp", "", "One-time code from the reset email")
	passwordResetCmd.Flags().StringVar(&passwordNew, "new-password", "", "New password")
	passwordCmd.AddCommand(passwordForgotCmd)
	passwordCmd.AddCommand(passwordResetCmd)
	rootCmd.AddCommand(passwordCmd)
}

func runPasswordForgot(cmd *cobra.Command, args []string) error {
	if passwordEmail == "" {
		return fmt.Errorf("--email is required")
	}
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.client.ForgotPassword(ctx, hrapi.ForgotPasswordRequest{Email: passwordEmail}); err != nil {
		return err
	}
	fmt.Println("Reset code sent. Check your email.")
	return nil
}

func runPasswordReset(cmd *cobra.Command, args []string) error {
	if passwordEmail == "" || passwordOTP == "" || passwordNew == "" {
		return fmt.Errorf("--email, --otp, and --new-password are required")
	}
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	err = a.client.ResetPassword(ctx, hrapi.ResetPasswordRequest{
		Email:       passwordEmail,
		OTP:         passwordOTP,
		NewPassword: passwordNew,
	})
	if err != nil {
		return err
	}
	fmt.Println("Password updated. You can sign in now.")
	return nil
}
