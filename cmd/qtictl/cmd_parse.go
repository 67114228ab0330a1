package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpromedia/aivo-qti/internal/qti/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse <item.xml>",
	Short: "Parse a single assessment item and print the model as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		item, warnings, err := parser.ParseItem(b)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	},
}

var packageCmd = &cobra.Command{
	Use:   "package <pkg.zip>",
	Short: "Parse a content package and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		pkg, err := parser.ParsePackage(b)
		if err != nil {
			return err
		}
		for _, w := range pkg.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
		fmt.Printf("version: %s\n", pkg.Version)
		fmt.Printf("resources: %d\n", len(pkg.Resources))
		fmt.Printf("items: %d\n", len(pkg.Items))
		fmt.Printf("tests: %d\n", len(pkg.Tests))
		fmt.Printf("webcontent files: %d\n", len(pkg.WebContent))
		return nil
	},
}
