package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"a11ylint/internal/fixtures"
)

// fixturesCmd groups the fixture corpus operations.
var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Work with the HTML fixture corpus",
}

// fixturesVerifyCmd audits every fixture and reports drift against the
// expectations declared in the fixture files.
var fixturesVerifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Verify the rule engine against a fixture corpus",
	Long: `Audits every .html fixture in the directory and compares the observed
violations against the expectation declared in each fixture's leading
comment, e.g. <!-- expect: missing-accessible-name=1 -->.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFixturesVerify,
}

func init() {
	fixturesCmd.AddCommand(fixturesVerifyCmd)
	rootCmd.AddCommand(fixturesCmd)
}

func runFixturesVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	dir := "internal/fixtures/testdata"
	if len(args) == 1 {
		dir = args[0]
	}

	logger.Info("verifying fixture corpus", zap.String("dir", dir))
	drifts, err := fixtures.Verify(ctx, dir, newAuditor())
	if err != nil {
		return err
	}

	if len(drifts) == 0 {
		fmt.Println("fixture corpus verified: no drift")
		return nil
	}
	for _, d := range drifts {
		fmt.Println(d)
	}
	cmd.SilenceUsage = true
	return fmt.Errorf("%d fixture expectation(s) drifted", len(drifts))
}
