// Package diskbudget computes how many additional bytes the system may
// acquire given filesystem stats and a configured budget, and implements
// the random-order deletion policy used to recover from overruns.
package diskbudget

// Hysteresis is the fixed safety margin subtracted from the raw budget so
// that downloads stop comfortably before free space is actually exhausted,
// preventing thrash at the edge.
const Hysteresis = 50 * 1 << 20 // 50 MiB

// Result is the outcome of a single budget calculation.
type Result struct {
	BudgetBytes  uint64
	DeficitBytes uint64
	OverBudget   bool
}

// Config carries the subset of the daemon configuration the calculator
// needs; it has no other side effects and takes no dependency on the
// config package so it stays trivially testable.
type Config struct {
	MinFreeBytes      uint64
	MinFreePercentage float64
	MaxStorageBytes   uint64
}

// Calculate is a pure function: given filesystem totals and current usage,
// it returns the budget, deficit and over-budget flag for this tick.
func Calculate(cfg Config, fsTotal, fsFree, currentUsage uint64) Result {
	minRequired := cfg.MinFreeBytes
	if pct := uint64(float64(fsTotal) * cfg.MinFreePercentage); pct > minRequired {
		minRequired = pct
	}

	availableSpace := subOrZero(fsFree, minRequired)

	var r Result
	if cfg.MaxStorageBytes > 0 {
		availableForUs := subOrZero(cfg.MaxStorageBytes, currentUsage)
		r.BudgetBytes = min(availableSpace, availableForUs)
		r.OverBudget = currentUsage > cfg.MaxStorageBytes || r.BudgetBytes == 0
		r.DeficitBytes = subOrZero(currentUsage, cfg.MaxStorageBytes)
	} else {
		r.BudgetBytes = availableSpace
		r.OverBudget = r.BudgetBytes == 0
		r.DeficitBytes = subOrZero(minRequired, fsFree)
	}

	if r.BudgetBytes > Hysteresis {
		r.BudgetBytes -= Hysteresis
	} else {
		r.BudgetBytes = 0
		r.OverBudget = true
	}

	return r
}

func subOrZero(a, b uint64) uint64 {
	if a <= b {
		return 0
	}
	return a - b
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
