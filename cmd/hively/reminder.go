package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/spf13/cobra"
)

func reminderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Manage bill reminders",
	}

	cmd.AddCommand(reminderAddCmd())
	cmd.AddCommand(reminderListCmd())
	cmd.AddCommand(reminderDeleteCmd())
	return cmd
}

func reminderAddCmd() *cobra.Command {
	var (
		amountFlag string
		dueFlag    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a reminder for an upcoming bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			due, err := parseDate(dueFlag)
			if err != nil {
				return err
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reminder := model.Reminder{
				Title:   args[0],
				Amount:  amount,
				DueDate: due,
			}
			if err := store.AddReminder(ctx, &reminder); err != nil {
				return err
			}
			cmd.Printf("Added reminder %d: %s due %s\n",
				reminder.ID, reminder.Title, reminder.DueDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "expected amount (required)")
	cmd.Flags().StringVarP(&dueFlag, "due", "d", "", "due date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func reminderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reminders, soonest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reminders, err := store.GetReminders(ctx)
			if err != nil {
				return err
			}

			if len(reminders) == 0 {
				cmd.Println("No reminders.")
				return nil
			}

			now := time.Now()
			for _, r := range reminders {
				note := ""
				switch {
				case r.Past(now):
					note = " (past)"
				case r.DueToday(now):
					note = " (due today)"
				case r.DueTomorrow(now):
					note = " (due tomorrow)"
				}
				cmd.Printf("%4d  %s  %10s  %s%s\n",
					r.ID, r.DueDate.Format("2006-01-02"), r.Amount.StringFixed(2), r.Title, note)
			}
			return nil
		},
	}
}

func reminderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
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

			if err := store.DeleteReminder(ctx, id); err != nil {
				return err
			}
			cmd.Printf("Deleted reminder %d\n", id)
			return nil
		},
	}
}
