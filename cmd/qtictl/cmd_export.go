package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpromedia/aivo-qti/internal/qti/export"
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/parser"
)

var exportOutFile string

var exportCmd = &cobra.Command{
	Use:   "export <item.xml> [item.xml...]",
	Short: "Build a QTI 2.1 content package from one or more items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make(map[string]*model.AssessmentItem, len(args))
		for _, path := range args {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			item, warnings, err := parser.ParseItem(b)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			for _, w := range warnings {
				fmt.Fprintln(os.Stderr, "warning:", w)
			}
			items[item.Identifier] = item
		}

		zipBytes, err := export.BuildPackage(items)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOutFile, zipBytes, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s (%d items, %d bytes)\n", exportOutFile, len(items), len(zipBytes))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutFile, "out", "o", "package.zip", "output zip path")
}
