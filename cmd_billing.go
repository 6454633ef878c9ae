package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/vehicore/models"
)

var (
	checkoutPackage string
	checkoutKey     string
	checkoutWait    string
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List credit packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp()
		if err := requireSession(app); err != nil {
			return err
		}
		packages, err := app.Billing.LoadPackages(cmd.Context())
		if err != nil {
			return cliError(err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRODUCT\tCREDITS\tPRICE")
		for _, p := range packages {
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g %s\n", p.Identifier(), p.Name, p.Product, p.Credits.Value, p.Price.Value, p.Currency)
		}
		return w.Flush()
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Start a credit purchase, or wait for one to land with --wait",
	RunE:  runCheckout,
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutPackage, "package", "", "Package id to buy")
	checkoutCmd.Flags().StringVar(&checkoutKey, "key", "", "Key id to credit")
	checkoutCmd.Flags().StringVar(&checkoutWait, "wait", "", "Checkout session id to wait for")
	rootCmd.AddCommand(packagesCmd, checkoutCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
	app := loadApp()
	if err := requireSession(app); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if checkoutWait != "" {
		fmt.Fprintln(out, "Waiting for credits to appear...")
		credited, err := app.Usage.AwaitPurchase(cmd.Context(), checkoutWait)
		if err != nil {
			return cliError(err)
		}
		if credited {
			fmt.Fprintln(out, "Credits are available.")
		} else {
			fmt.Fprintln(out, "Payment received. Credits may take a few minutes to appear.")
		}
		return nil
	}

	resp, err := app.Billing.Checkout(cmd.Context(), models.CheckoutRequest{PackageID: checkoutPackage, APIKeyID: checkoutKey})
	if err != nil {
		return cliError(err)
	}
	fmt.Fprintf(out, "Complete the payment at:\n\n  %s\n", resp.RedirectURL())
	if resp.SessionID != "" {
		fmt.Fprintf(out, "\nThen run: vehicore checkout --wait %s\n", resp.SessionID)
	}
	return nil
}
