package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/vehicore/models"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		app.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		if err := requireSession(app); err != nil {
			return err
		}
		user, err := app.Session.LoadCurrentUser(cmd.Context())
		if err != nil {
			return cliError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.DisplayName(), user.Email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app := loadApp()

	reader := bufio.NewReader(os.Stdin)
	email, err := promptIfEmpty(cmd, reader, loginEmail, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(cmd, reader, loginPassword, "Password: ")
	if err != nil {
		return err
	}

	user, err := app.Session.SignIn(cmd.Context(), models.SignInRequest{Email: email, Password: password})
	if err != nil {
		return cliError(err)
	}
	logger.Debug().Str("email", user.Email).Msg("Signed in")
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", user.DisplayName())
	return nil
}

func promptIfEmpty(cmd *cobra.Command, reader *bufio.Reader, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
