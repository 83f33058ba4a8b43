package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/models"
	"github.com/jdvries/transportdesk/internal/services"
)

var (
	suggestCustomerID uint
	suggestWeekID     string
	suggestFile       string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest-rate",
	Short: "Extract a weekly rate suggestion from a rate document",
	Long: `Reads a free-text rate document (diesel-surcharge circular, carrier
e-mail) and asks the language model for the week's rate value. The result is
stored as a suggestion that must be confirmed before anything is invoiced
with it; the deterministic engine never reads unconfirmed suggestions on its
own.`,
	Example: `  # Extract from a file
  invoicectl suggest-rate --customer 12 --week 2026-07 --file circular.txt

  # Extract from stdin
  cat circular.txt | invoicectl suggest-rate --customer 12 --week 2026-07`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().UintVar(&suggestCustomerID, "customer", 0, "customer ID (required)")
	suggestCmd.Flags().StringVar(&suggestWeekID, "week", "", `week ID, e.g. "2026-07" (required)`)
	suggestCmd.Flags().StringVar(&suggestFile, "file", "", "document file (default: stdin)")
	_ = suggestCmd.MarkFlagRequired("customer")
	_ = suggestCmd.MarkFlagRequired("week")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	conn, cfg, err := openDB()
	if err != nil {
		return err
	}
	if cfg.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not configured")
	}

	document, err := readDocument()
	if err != nil {
		return err
	}

	customer, err := loadCustomer(cmd.Context(), conn, suggestCustomerID)
	if err != nil {
		return err
	}

	svc := services.NewRateSuggestionService(openai.NewClient(cfg.OpenAI.APIKey), cfg.OpenAI.Model, conn)
	rate, err := svc.SuggestWeeklyRate(cmd.Context(), customer, suggestWeekID, document)
	if err != nil {
		return err
	}

	fmt.Printf("Suggested rate for %s, week %s: %.4f (confirm before invoicing)\n",
		customer.Name, rate.WeekID, rate.Value)
	return nil
}

func readDocument() (string, error) {
	if suggestFile != "" {
		data, err := os.ReadFile(suggestFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadCustomer fetches a customer with its plates.
func loadCustomer(ctx context.Context, conn *gorm.DB, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := conn.WithContext(ctx).Preload("LicensePlates").First(&customer, id).Error; err != nil {
		return nil, fmt.Errorf("load customer %d: %w", id, err)
	}
	return &customer, nil
}
