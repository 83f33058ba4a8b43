package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jdvries/transportdesk/internal/services"
)

var (
	genDriverID   uint
	genWeekID     string
	genCustomerID uint
	genWeeklyRate float64
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute a week's invoice without persisting it",
	Example: `  # Preview week 2026-07 for driver 3
  invoicectl preview --driver 3 --week 2026-07

  # Preview against an explicit customer and weekly rate
  invoicectl preview --driver 3 --week 2026-07 --customer 12 --weekly-rate 9.5`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compute a week's invoice and persist it as a concept",
}

func init() {
	previewCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), false)
	}
	generateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), true)
	}
	for _, c := range []*cobra.Command{previewCmd, generateCmd} {
		c.Flags().UintVar(&genDriverID, "driver", 0, "driver ID (required)")
		c.Flags().StringVar(&genWeekID, "week", "", `week ID, e.g. "2026-07" (required)`)
		c.Flags().UintVar(&genCustomerID, "customer", 0, "customer ID (skips plate-based resolution)")
		c.Flags().Float64Var(&genWeeklyRate, "weekly-rate", 0, "override the stored weekly rate")
		_ = c.MarkFlagRequired("driver")
		_ = c.MarkFlagRequired("week")
	}
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(ctx context.Context, persist bool) error {
	conn, _, err := openDB()
	if err != nil {
		return err
	}
	svc := services.NewInvoiceService(conn)

	weeklyLog, err := svc.LoadWeeklyLog(ctx, genDriverID, genWeekID)
	if err != nil {
		return err
	}

	opts := services.CreateOptions{Persist: persist}
	if genCustomerID != 0 {
		customer, err := loadCustomer(ctx, conn, genCustomerID)
		if err != nil {
			return err
		}
		opts.Customer = customer
	}
	if flagChanged("weekly-rate", previewCmd, generateCmd) {
		rate := genWeeklyRate
		opts.WeeklyRate = &rate
	}

	result, err := svc.CreateInvoice(ctx, weeklyLog, opts)
	if err != nil {
		return err
	}

	printResult(result)
	if result.Invoice != nil {
		fmt.Printf("\nConcept invoice %d stored (reference %s)\n", result.Invoice.ID, result.Invoice.Reference)
	}
	return nil
}

func printResult(result *services.InvoiceResult) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QTY\tDESCRIPTION\tPRICE\tVAT\tTOTAL")
	for _, line := range result.Lines {
		fmt.Fprintf(tw, "%.2f\t%s\t%.4f\t%.0f%%\t%.2f\n",
			line.Quantity,
			strings.ReplaceAll(line.Description, "\n", " / "),
			line.UnitPrice,
			line.VATRate,
			line.Total)
	}
	tw.Flush()

	fmt.Printf("\nSubtotal:\t€ %.2f\n", result.SubTotal)
	for _, bucket := range result.Buckets {
		fmt.Printf("VAT %.0f%%:\t€ %.2f\n", bucket.Rate, bucket.VAT)
	}
	fmt.Printf("Total:\t\t€ %.2f\n", result.GrandTotal)

	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s (%s)\n", warning.Code, warning.Detail)
	}
}

// flagChanged reports whether the flag was set on whichever command ran.
func flagChanged(name string, cmds ...*cobra.Command) bool {
	for _, c := range cmds {
		if c.Flags().Changed(name) {
			return true
		}
	}
	return false
}
