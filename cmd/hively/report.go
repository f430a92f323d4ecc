package main

import (
	"time"

	"github.com/hively/hively/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize spending by category, month, and payment mode",
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

			if monthFlag != "" {
				ref, err := time.ParseInLocation("2006-01", monthFlag, time.Local)
				if err != nil {
					return err
				}
				expenses = report.FilterMonth(expenses, ref)
			}

			cmd.Print(report.Render(report.Build(expenses, categories)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthFlag, "month", "m", "", "restrict to one month (YYYY-MM)")
	return cmd
}
