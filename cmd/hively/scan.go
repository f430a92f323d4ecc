package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/scanner"
	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	var (
		saveFlag     bool
		categoryFlag string
	)

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Extract expenses from a receipt photo",
		Long: `Send a receipt image to the configured vision API and print the
extracted expenses. With --save they are written to the store in one batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(args[0])))
			if mimeType == "" {
				mimeType = "image/jpeg"
			}

			s, err := scanner.New(scanner.Config{
				Endpoint: cfg.Scan.Endpoint,
				APIKey:   cfg.Scan.APIKey,
				Model:    cfg.Scan.Model,
			})
			if err != nil {
				return err
			}

			result, err := s.Scan(ctx, image, mimeType)
			if err != nil {
				return err
			}

			if len(result.Expenses) == 0 {
				cmd.Println("No expenses found on the receipt.")
				return nil
			}

			for _, draft := range result.Expenses {
				cmd.Printf("%10s  %s\n", draft.Amount.StringFixed(2), draft.Title)
			}

			if !saveFlag {
				cmd.Println("\nRe-run with --save to record these expenses.")
				return nil
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categoryID, err := resolveCategory(ctx, store, categoryFlag)
			if err != nil {
				return err
			}

			expenses := make([]model.Expense, 0, len(result.Expenses))
			for _, draft := range result.Expenses {
				expenses = append(expenses, model.Expense{
					Title:       draft.Title,
					Amount:      draft.Amount,
					Date:        time.Now(),
					CategoryID:  categoryID,
					PaymentMode: model.PaymentModeOther,
				})
			}
			if err := store.AddExpenses(ctx, expenses); err != nil {
				return err
			}

			cmd.Printf("Saved %d expense(s)\n", len(expenses))
			return nil
		},
	}

	cmd.Flags().BoolVar(&saveFlag, "save", false, "save the extracted expenses")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "category for saved expenses (default Miscellaneous)")
	return cmd
}
