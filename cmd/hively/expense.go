package main

import (
	"fmt"
	"strconv"

	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
	"github.com/spf13/cobra"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage expenses",
	}

	cmd.AddCommand(expenseAddCmd())
	cmd.AddCommand(expenseListCmd())
	cmd.AddCommand(expenseUpdateCmd())
	cmd.AddCommand(expenseDeleteCmd())
	cmd.AddCommand(expenseClearCmd())
	return cmd
}

func expenseAddCmd() *cobra.Command {
	var (
		amountFlag   string
		dateFlag     string
		categoryFlag string
		modeFlag     string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Record a new expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}
			categoryID, err := resolveCategory(ctx, store, categoryFlag)
			if err != nil {
				return err
			}

			mode := model.PaymentMode(modeFlag)
			if !model.ValidPaymentMode(mode) {
				return fmt.Errorf("invalid payment mode %q (Cash, UPI, Card, Other)", modeFlag)
			}

			expense := model.Expense{
				Title:       args[0],
				Amount:      amount,
				Date:        date,
				CategoryID:  categoryID,
				PaymentMode: mode,
			}
			if err := store.AddExpense(ctx, &expense); err != nil {
				return err
			}

			cmd.Printf("Added expense %d: %s (%s)\n", expense.ID, expense.Title, expense.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "expense amount (required)")
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "category name or id (default Miscellaneous)")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", string(model.PaymentModeCash), "payment mode (Cash, UPI, Card, Other)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func expenseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.GetExpenses(ctx)
			if err != nil {
				return err
			}
			categories, err := store.GetCategories(ctx)
			if err != nil {
				return err
			}

			names := make(map[int64]string, len(categories))
			for _, c := range categories {
				names[c.ID] = c.Name
			}

			if len(expenses) == 0 {
				cmd.Println("No expenses recorded.")
				return nil
			}

			for _, e := range expenses {
				name, ok := names[e.CategoryID]
				if !ok {
					name = "Uncategorized"
				}
				cmd.Printf("%4d  %s  %10s  %-14s %-6s %s\n",
					e.ID, e.Date.Format("2006-01-02"), e.Amount.StringFixed(2), name, e.PaymentMode, e.Title)
			}
			return nil
		},
	}
}

func expenseUpdateCmd() *cobra.Command {
	var (
		titleFlag    string
		amountFlag   string
		dateFlag     string
		categoryFlag string
		modeFlag     string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an existing expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expense, err := store.GetExpense(ctx, id)
			if err != nil {
				return err
			}
			if expense == nil {
				return fmt.Errorf("%w: no expense with id %d", common.ErrNotFound, id)
			}

			if titleFlag != "" {
				expense.Title = titleFlag
			}
			if amountFlag != "" {
				if expense.Amount, err = parseAmount(amountFlag); err != nil {
					return err
				}
			}
			if dateFlag != "" {
				if expense.Date, err = parseDate(dateFlag); err != nil {
					return err
				}
			}
			if categoryFlag != "" {
				if expense.CategoryID, err = resolveCategory(ctx, store, categoryFlag); err != nil {
					return err
				}
			}
			if modeFlag != "" {
				mode := model.PaymentMode(modeFlag)
				if !model.ValidPaymentMode(mode) {
					return fmt.Errorf("invalid payment mode %q (Cash, UPI, Card, Other)", modeFlag)
				}
				expense.PaymentMode = mode
			}

			if err := store.UpdateExpense(ctx, expense); err != nil {
				return err
			}
			cmd.Printf("Updated expense %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&titleFlag, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "new category name or id")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "new payment mode")
	return cmd
}

func expenseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more expenses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteExpenses(ctx, ids); err != nil {
				return err
			}
			cmd.Printf("Deleted %d expense(s)\n", len(ids))
			return nil
		},
	}
}

func expenseClearCmd() *cobra.Command {
	var confirmFlag bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmFlag {
				return fmt.Errorf("refusing to clear all expenses without --yes")
			}

			ctx := cmd.Context()
			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ClearExpenses(ctx); err != nil {
				return err
			}
			cmd.Println("All expenses deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmFlag, "yes", "y", false, "confirm deletion")
	return cmd
}
