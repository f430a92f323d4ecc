package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hively/hively/internal/importer"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import expenses from a JSON export or an OFX/QFX statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format := importer.Format(formatFlag)
			if formatFlag == "" {
				switch strings.ToLower(filepath.Ext(args[0])) {
				case ".json":
					format = importer.FormatJSON
				case ".ofx", ".qfx":
					format = importer.FormatOFX
				default:
					return fmt.Errorf("cannot infer format from %q, use --format", args[0])
				}
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer func() { _ = file.Close() }()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summary, err := importer.New(store, importer.WithProgress()).Import(ctx, file, format)
			if err != nil {
				return err
			}

			cmd.Printf("Imported %d expense(s), skipped %d duplicate(s)\n", summary.Imported, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "input format (json, ofx)")
	return cmd
}
