// Package enforcer runs the per-tick disk budget enforcement sequence:
// scan usage, calculate the budget, feed storage_ok into the state
// machine, apply per-file priorities, and fall back to deletion when still
// over budget.
package enforcer

import (
	"github.com/rs/zerolog"

	"github.com/bjesus/levin/internal/diskbudget"
	"github.com/bjesus/levin/internal/session"
)

// StorageInfoFunc reports filesystem totals for a path.
type StorageInfoFunc func(path string) (total, free uint64, err error)

// DiskUsageFunc reports the actual block usage and file count under a path.
type DiskUsageFunc func(path string) (usage uint64, fileCount int, err error)

// Status is the outcome of one enforcement run, cached for status reporting.
type Status struct {
	UsageBytes uint64
	FileCount  int
	Budget     diskbudget.Result
	FreedBytes uint64
}

// Enforcer ties the pure disk-budget calculator to the live filesystem and
// torrent session.
type Enforcer struct {
	DataDirectory string
	Config        diskbudget.Config

	StorageInfo StorageInfoFunc
	DiskUsage   DiskUsageFunc
	Delete      func(dir string, target uint64) (uint64, error)

	Session session.Session
	Log     zerolog.Logger
}

// Run executes one full enforcement pass and returns the resulting status.
// onStorageOK is called with the final storage_ok value so the caller can
// feed it into the state machine without this package depending on it.
func (e *Enforcer) Run(onStorageOK func(ok bool)) (Status, error) {
	status, err := e.measure()
	if err != nil {
		return status, err
	}
	onStorageOK(!status.Budget.OverBudget)
	e.Session.ApplyBudgetPriorities(status.Budget.BudgetBytes)

	if status.Budget.OverBudget && status.Budget.DeficitBytes > 0 {
		freed, err := e.Delete(e.DataDirectory, status.Budget.DeficitBytes)
		if err != nil {
			e.Log.Warn().Err(err).Msg("deletion policy failed")
		}
		status.FreedBytes = freed

		status, err = e.measure()
		if err != nil {
			return status, err
		}
		status.FreedBytes += freed
		onStorageOK(!status.Budget.OverBudget)
		e.Session.ApplyBudgetPriorities(status.Budget.BudgetBytes)
	}

	return status, nil
}

// measure scans usage and computes the budget, without applying priorities.
func (e *Enforcer) measure() (Status, error) {
	usage, fileCount, err := e.DiskUsage(e.DataDirectory)
	if err != nil {
		return Status{}, err
	}

	total, free, err := e.StorageInfo(e.DataDirectory)
	if err != nil {
		return Status{}, err
	}

	budget := diskbudget.Calculate(e.Config, total, free, usage)
	return Status{UsageBytes: usage, FileCount: fileCount, Budget: budget}, nil
}
