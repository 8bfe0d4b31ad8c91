package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"a11ylint/internal/store"
)

// historyCmd shows persisted audit runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved audit runs",
	Long: `Lists runs persisted with 'scan --save', newest first, plus the
all-time violation counts per rule.`,
	RunE: runHistory,
}

var (
	historyLimit int
	historyRun   string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the violations of one run id")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := store.Open(storePath())
	if err != nil {
		return err
	}
	defer st.Close()

	if historyRun != "" {
		violations, err := st.RunViolations(historyRun)
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Printf("no violations recorded for run %s\n", historyRun)
			return nil
		}
		for _, v := range violations {
			fmt.Printf("%s:%d [%s/%s] %s\n    %s\n", v.Source, v.Line, v.RuleID, v.Impact, v.Message, v.Selector)
		}
		return nil
	}

	runs, err := st.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs (use 'scan --save')")
		return nil
	}

	fmt.Printf("%-38s %-20s %8s %10s\n", "RUN", "STARTED", "SOURCES", "VIOLATIONS")
	for _, r := range runs {
		fmt.Printf("%-38s %-20s %8d %10d\n",
			r.RunID, r.StartedAt.Local().Format(time.DateTime), r.Sources, r.Violations)
	}

	counts, err := st.RuleCounts()
	if err != nil {
		return err
	}
	if len(counts) > 0 {
		fmt.Println("\nall-time violations by rule:")
		ids := make([]string, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("  %-28s %d\n", id, counts[id])
		}
	}
	return nil
}
