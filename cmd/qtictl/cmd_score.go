package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpromedia/aivo-qti/internal/qti/parser"
	"github.com/artpromedia/aivo-qti/internal/qti/processor"
)

var scoreResponsesFile string

// submissionFile is the YAML shape the score command reads:
//
//	responses:
//	  - identifier: RESPONSE
//	    values: [choice_a, choice_b]
type submissionFile struct {
	Responses []processor.Response `yaml:"responses"`
}

var scoreCmd = &cobra.Command{
	Use:   "score <item.xml>",
	Short: "Score a submission file against an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemBytes, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		item, warnings, err := parser.ParseItem(itemBytes)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}

		subBytes, err := os.ReadFile(scoreResponsesFile)
		if err != nil {
			return err
		}
		var sub submissionFile
		if err := yaml.Unmarshal(subBytes, &sub); err != nil {
			return fmt.Errorf("parse %s: %w", scoreResponsesFile, err)
		}

		result := processor.New().Process(item, sub.Responses)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreResponsesFile, "responses", "r", "responses.yaml", "YAML file with the submitted responses")
}
