package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/financehub/financehub/internal/closures"
	"github.com/financehub/financehub/internal/reconciliation"
)

var closureCmd = &cobra.Command{
	Use:   "closure",
	Short: "Work with daily closures",
}

var closurePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the summary and message a closure would have, without storing it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		storeID, _ := flags.GetString("store")
		date, _ := flags.GetString("date")
		register, _ := flags.GetString("register")
		rate, _ := flags.GetFloat64("rate")
		if date == "" {
			date = time.Now().Format(time.DateOnly)
		}

		rt, err := openRuntime(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()
		svc := rt.services()
		if err := svc.Settings.Load(cmd.Context()); err != nil {
			return err
		}

		preview, err := svc.Closures.Preview(cmd.Context(), systemPrincipal, closures.PreviewInput{
			Scope: reconciliation.Scope{StoreID: storeID, Date: date, CashRegisterID: register},
		})
		if err != nil {
			return err
		}
		if rate <= 0 {
			if rate, err = svc.Rates.RateFor(cmd.Context(), date); err != nil {
				return err
			}
		}
		store, err := svc.Stores.Get(cmd.Context(), systemPrincipal, storeID)
		if err != nil {
			return err
		}

		summary, err := json.MarshalIndent(preview.Summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", summary)

		closure := reconciliation.BuildClosure(reconciliation.ClosureHeader{StoreID: storeID, Date: date, BCVRate: rate},
			preview.Summary, reconciliation.DeclaredAmounts{Declared: preview.Summary.Calculated})
		opts := svc.Settings.MessageOptions()
		opts.StoreName = store.Name
		fmt.Fprintln(cmd.OutOrStdout(), reconciliation.RenderMessage(closure, opts))
		return nil
	},
}

func init() {
	flags := closurePreviewCmd.Flags()
	flags.String("store", "", "Store id")
	flags.String("date", "", "Business date YYYY-MM-DD, default today")
	flags.String("register", "", "Limit to one cash register")
	flags.Float64("rate", 0, "Official rate, default the stored rate of the date")
	_ = closurePreviewCmd.MarkFlagRequired("store")

	closureCmd.AddCommand(closurePreviewCmd)
	rootCmd.AddCommand(closureCmd)
}
