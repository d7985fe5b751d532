package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail string
	loginSSO   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Crewdesk",
	Long: `Sign in to Crewdesk and store the session for later commands.

By default, login asks for email and password and signs in against the
backend directly. With --sso and a configured identity provider, login
opens the provider's sign-in page in your browser instead and waits for
the redirect.

Examples:
  # Password login
  crewgate login --email ada@example.com

  # Single sign-on through the configured identity provider
  crewgate login --sso`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginSSO, "sso", false, "Sign in through the configured identity provider")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if loginSSO {
		if !a.provider.Configured() {
			return fmt.Errorf("no identity provider configured; set provider.issuer_url and provider.client_id, or login without --sso")
		}
		identity, err := a.provider.LoginSSO(ctx, func(url string) error {
			fmt.Fprintf(os.Stderr, "Open this URL in your browser to sign in:\n\n  %s\n\n", url)
			return nil
		})
		if err != nil {
			return fmt.Errorf("sign-in failed: %w", err)
		}
		fmt.Printf("Signed in as %s\n", identity.Email)
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	email := loginEmail
	if email == "" {
		fmt.Fprint(os.Stderr, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	emp, err := a.provider.LoginPassword(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	if emp != nil {
		fmt.Printf("Signed in as %s %s <%s>\n", emp.FirstName, emp.LastName, emp.Email)
	} else {
		fmt.Println("Signed in.")
	}
	return nil
}
