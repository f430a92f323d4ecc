package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hively/hively/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export expenses to JSON, CSV, or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format := export.Format(formatFlag)
			if formatFlag == "" {
				switch strings.ToLower(filepath.Ext(args[0])) {
				case ".json":
					format = export.FormatJSON
				case ".csv":
					format = export.FormatCSV
				case ".xlsx":
					format = export.FormatXLSX
				default:
					return fmt.Errorf("cannot infer format from %q, use --format", args[0])
				}
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer func() { _ = file.Close() }()

			if err := export.New(store).Export(ctx, file, format); err != nil {
				return err
			}

			cmd.Printf("Exported expenses to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format (json, csv, xlsx)")
	return cmd
}
