package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/styles"
)

var reconcileRepair bool

// errInconsistent is returned when reconcile finds problems it cannot repair.
var errInconsistent = errors.New("ledger is inconsistent")

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Audit cards against the ledger",
	Long: `Check that every merge is complete and logged, that no merge chain
loops, and that no key is claimed twice.

With --repair, consolidations left half done or missing from the ledger
are re-run.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileRepair, "repair", false, "finish partially applied consolidations")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if reconcileService == nil {
		return errors.New("reconcile service not configured")
	}

	var (
		report *domain.ReconcileReport
		err    error
	)
	if reconcileRepair {
		report, err = reconcileService.Repair(cmd.Context())
	} else {
		report, err = reconcileService.Check(cmd.Context())
	}
	if report != nil {
		printReconcileReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	if !report.Clean() {
		return errInconsistent
	}
	return nil
}

func printReconcileReport(cmd *cobra.Command, r *domain.ReconcileReport) {
	s := styles.DefaultStyles()
	cmd.Printf("Scanned %d cards, %d events\n", r.Cards, r.Events)

	for _, m := range r.Repaired {
		cmd.Println(s.Success.Render(fmt.Sprintf("Repaired: %s merged into %s", m.SourceID, m.TargetID)))
	}
	for _, m := range r.Relogged {
		cmd.Println(s.Success.Render(fmt.Sprintf("Logged: %s absorbed by %s", m.SourceID, m.TargetID)))
	}
	for _, m := range r.Pending {
		cmd.Println(s.Warning.Render(fmt.Sprintf("Pending merge: %s into %s", m.SourceID, m.TargetID)))
	}
	for _, m := range r.Unlogged {
		cmd.Println(s.Warning.Render(fmt.Sprintf("Unlogged merge: %s into %s", m.SourceID, m.TargetID)))
	}
	for _, d := range r.Dangling {
		cmd.Println(s.Error.Render(fmt.Sprintf("Dangling merge: %s points at missing %s", d.ID, d.TargetID)))
	}
	for _, c := range r.Cycles {
		cmd.Println(s.Error.Render("Merge cycle: " + strings.Join(c, " -> ")))
	}
	for _, c := range r.Conflicts {
		cmd.Println(s.Error.Render(fmt.Sprintf("Merge conflict: %s <-> %s", c[0], c[1])))
	}
	for i := range r.Collisions {
		cmd.Println(s.Error.Render(r.Collisions[i].Error()))
	}

	if r.Clean() {
		cmd.Println(s.Success.Render("No inconsistencies found."))
	}
}
