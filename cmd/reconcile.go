package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var reconcileApply bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check procurement records against the catalog and expenses",
	Long: `Walk every procurement record and report sarees whose status or price
disagrees with the review outcome, and approved procurements missing their
additional-cost expense. With --apply the drift is repaired.`,
	Run: func(cmd *cobra.Command, args []string) {
		runReconcile(cmd.Context())
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileApply, "apply", false, "repair the drift instead of only reporting it")
}

func runReconcile(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies()
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()

	report, err := deps.Procurements.Reconcile(ctx, reconcileApply)
	if err != nil {
		log.Fatalf("reconcile failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}

	deps.Logger.Info("reconciliation finished",
		"apply", reconcileApply,
		"checked", report.Checked,
		"repaired_sarees", len(report.RepairedSarees),
		"replayed_expenses", len(report.ReplayedExpenses))
}
