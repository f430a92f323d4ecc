package main

import (
	"time"

	"github.com/hively/hively/internal/budget"
	"github.com/hively/hively/internal/report"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage the monthly budget",
	}

	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetStatusCmd())
	return cmd
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly budget (0 disables it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			settings, err := store.GetSettings(ctx)
			if err != nil {
				return err
			}
			settings.MonthlyBudget = amount
			if err := store.UpdateSettings(ctx, &settings); err != nil {
				return err
			}

			if amount.IsZero() {
				cmd.Println("Monthly budget disabled.")
			} else {
				cmd.Printf("Monthly budget set to %s\n", amount.StringFixed(2))
			}
			return nil
		},
	}
}

func budgetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show this month's budget position",
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
			settings, err := store.GetSettings(ctx)
			if err != nil {
				return err
			}

			status := budget.Evaluate(expenses, settings, time.Now())
			cmd.Println(report.RenderBudget(status))
			return nil
		},
	}
}
