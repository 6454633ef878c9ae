package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/vehicore/onboarding"
	"github.com/example/vehicore/usage"
)

var (
	usageFrom string
	usageTo   string
	usageKey  string
	usageTZ   string
	usageJSON bool

	routeReveal bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show credit usage for a date range",
	RunE:  runUsage,
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Show which dashboard view applies and the integration guide",
	RunE:  runRoute,
}

func init() {
	usageCmd.Flags().StringVar(&usageFrom, "from", "", "Start date (YYYY-MM-DD), defaults to the configured range")
	usageCmd.Flags().StringVar(&usageTo, "to", "", "End date (YYYY-MM-DD), defaults to today")
	usageCmd.Flags().StringVar(&usageKey, "key", "", "Key id, or 'all' for the whole account")
	usageCmd.Flags().StringVar(&usageTZ, "tz", "", "IANA time zone used for day buckets")
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "Print the view as JSON")

	routeCmd.Flags().BoolVar(&routeReveal, "reveal", false, "Print the plaintext key in examples")

	rootCmd.AddCommand(usageCmd, routeCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	app := loadApp()
	if err := requireSession(app); err != nil {
		return err
	}

	loc := time.Local
	if usageTZ != "" {
		l, err := time.LoadLocation(usageTZ)
		if err != nil {
			return fmt.Errorf("unknown time zone %q: %w", usageTZ, err)
		}
		loc = l
	}

	f := app.DefaultFilter(time.Now(), loc)
	if usageFrom != "" {
		f.From = usageFrom
	}
	if usageTo != "" {
		f.To = usageTo
	}
	if usageKey != "" {
		f.KeyID = usageKey
	}
	if days, ok := usage.RangeDays(f); ok && days > app.Config.MaxRangeDays {
		return fmt.Errorf("range must not exceed %d days", app.Config.MaxRangeDays)
	}

	if _, err := app.Usage.Refresh(cmd.Context()); err != nil {
		return cliError(err)
	}
	view := app.Usage.View(f, app.Policy)

	out := cmd.OutOrStdout()
	if usageJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return printUsage(out, view)
}

func printUsage(out io.Writer, view usage.View) error {
	key := view.SelectedKeyID
	for _, opt := range view.KeyOptions {
		if opt.ID == key {
			key = opt.Label
		}
	}
	if key == usage.AllKeys {
		key = "all keys"
	}
	fmt.Fprintf(out, "%s to %s, %s\n\n", view.From, view.To, key)
	fmt.Fprintf(out, "Purchased: %g  Remaining: %g  Purchases: %d  Keys: %d\n\n",
		view.Totals.TotalPurchasedCredits, view.Totals.TotalRemainingCredits,
		view.Totals.PurchasesCount, view.Totals.KeysCount)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PRODUCT\tREMAINING\tPURCHASED\tUSED\tTOTAL\t")
	for _, row := range view.ProductStats {
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t\n", row.Product, row.Remaining, row.Purchased, row.Used, row.Total)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nCredits purchased in range: %g\n", view.TotalCreditsInRange)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range view.Series {
		if p.Credits == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s\t%g\n", p.Date, p.Credits)
	}
	return w.Flush()
}

func runRoute(cmd *cobra.Command, args []string) error {
	app := loadApp()
	out := cmd.OutOrStdout()

	if app.Session.CheckAuth() {
		if _, err := app.Keys.List(cmd.Context()); err != nil {
			return cliError(err)
		}
	}

	decision := app.Route()
	fmt.Fprintf(out, "%s -> %s\n", decision.State, decision.Redirect)
	if decision.State != onboarding.StateOnboarding {
		return nil
	}

	keys := app.Keys.Snapshot()
	content := onboarding.BuildContent(keys.Keys, keys.NewlyCreated, app.Config.APIBaseURL, routeReveal)
	fmt.Fprintf(out, "\nNo key has been used yet. Make a first request:\n\n  %s\n", content.Env)
	for _, ex := range content.Examples {
		fmt.Fprintf(out, "\n# %s\n%s\n", ex.Label, ex.Code)
	}
	return nil
}
