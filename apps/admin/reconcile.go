package main

import (
	"context"
)

// reconcile finishes or undoes enrollment writes left half-applied by a
// crash, then prints what was repaired.
func (cli *commandLine) reconcile() error {
	report, err := cli.enrollSvc.Reconcile(context.Background())
	if err != nil {
		return err
	}

	if report.Empty() {
		logger.Println("nothing to repair; all rosters are consistent")
		return nil
	}

	logger.Printf("finished approvals:    %d", report.FinishedApprovals)
	logger.Printf("repaired mirrors:      %d", report.RepairedMirrors)
	logger.Printf("removed stray mirrors: %d", report.RemovedStrayMirrors)
	logger.Printf("rebuilt profiles:      %d", report.RebuiltProfiles)
	for _, id := range report.OrphanRosterEntries {
		logger.Printf("orphan roster entry (no profile, no surviving request): %s", id)
	}
	return nil
}
