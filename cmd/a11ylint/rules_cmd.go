package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"a11ylint/internal/rules"
)

// rulesCmd lists the registered rules.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered accessibility rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		disabled := make(map[string]bool)
		for _, id := range cfg.Rules.Disabled {
			disabled[id] = true
		}
		for _, r := range rules.All() {
			state := "enabled"
			if disabled[r.ID()] {
				state = "disabled"
			}
			fmt.Printf("%-28s %-9s %s\n", r.ID(), state, r.Describe())
		}
		return nil
	},
}

// rulesExplainCmd renders the rule's documentation page.
var rulesExplainCmd = &cobra.Command{
	Use:   "explain [rule-id]",
	Short: "Show the full documentation for a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesExplain,
}

var rulesDocsDir string

func init() {
	rulesExplainCmd.Flags().StringVar(&rulesDocsDir, "docs-dir", "docs/rules", "Directory holding per-rule markdown docs")
	rulesCmd.AddCommand(rulesExplainCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesExplain(cmd *cobra.Command, args []string) error {
	id := args[0]
	rule, ok := rules.Get(id)
	if !ok {
		return fmt.Errorf("unknown rule %q (run 'a11ylint rules' for the list)", id)
	}

	path := filepath.Join(rulesDocsDir, rule.ID()+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No doc page yet; the one-liner still helps.
			fmt.Printf("%s: %s\n", rule.ID(), rule.Describe())
			return nil
		}
		return fmt.Errorf("failed to read rule doc: %w", err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}
	out, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("failed to render rule doc: %w", err)
	}
	fmt.Print(out)
	return nil
}
