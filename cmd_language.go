package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var languageCmd = &cobra.Command{
	Use:   "language [LANG]",
	Short: "Show or set the interface language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), app.Preferences.Language())
			return nil
		}
		lang, err := app.Preferences.SetLanguage(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Language set to %s.\n", lang)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languageCmd)
}
