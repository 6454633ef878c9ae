package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/vehicore/state"
)

var revokeYes bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		if err := requireSession(app); err != nil {
			return err
		}
		keys, err := app.Keys.List(cmd.Context())
		if err != nil {
			return cliError(err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPREFIX\tCREATED\tLAST USED")
		for _, k := range keys {
			usedAt, ok := k.UsedAt()
			if !ok {
				usedAt = "never"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", k.Identifier(), k.Name, k.DisplayPrefix(), k.CreatedAt, usedAt)
		}
		return w.Flush()
	},
}

var keysCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an API key; the full key is printed once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		if err := requireSession(app); err != nil {
			return err
		}
		key, err := app.Keys.Create(cmd.Context(), args[0])
		if err != nil {
			return cliError(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created key %q (%s)\n\n", key.Name, key.Identifier())
		fmt.Fprintf(out, "  %s\n\n", key.Plaintext())
		fmt.Fprintln(out, "Copy this key now. It will not be shown again.")
		acknowledgeWhenSaved(bufio.NewReader(cmd.InOrStdin()), out, app.Keys)
		return nil
	},
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke ID",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		if err := requireSession(app); err != nil {
			return err
		}

		if !revokeYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Revoking %s cannot be undone. Requests using it will fail.\nType 'yes' to confirm: ", args[0])
			response, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && response == "" {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if strings.TrimSpace(strings.ToLower(response)) != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Revoke cancelled.")
				return nil
			}
		}

		if err := app.Keys.Delete(cmd.Context(), args[0]); err != nil {
			return cliError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s.\n", args[0])
		return nil
	},
}

// acknowledgeWhenSaved clears the plaintext slot only after the user types
// "saved". Anything else leaves the key in the slot.
func acknowledgeWhenSaved(in *bufio.Reader, out io.Writer, keys *state.KeyStore) bool {
	fmt.Fprint(out, "Type 'saved' once you have stored it: ")
	response, err := in.ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(out)
		return false
	}
	if strings.TrimSpace(strings.ToLower(response)) != "saved" {
		return false
	}
	keys.AcknowledgeNewKey()
	return true
}

func init() {
	keysRevokeCmd.Flags().BoolVarP(&revokeYes, "yes", "y", false, "Skip confirmation prompt")
	keysCmd.AddCommand(keysListCmd, keysCreateCmd, keysRevokeCmd)
	rootCmd.AddCommand(keysCmd)
}
