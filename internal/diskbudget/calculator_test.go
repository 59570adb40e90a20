package diskbudget

import "testing"

import "github.com/stretchr/testify/assert"

const (
	gb = 1 << 30
	mb = 1 << 20
)

func TestComfortableRoom(t *testing.T) {
	cfg := Config{MinFreeBytes: 1 * gb, MinFreePercentage: 0.05, MaxStorageBytes: 100 * gb}
	r := Calculate(cfg, 500*gb, 400*gb, 10*gb)
	assert.False(t, r.OverBudget)
	assert.Greater(t, r.BudgetBytes, uint64(0))
}

func TestOverCap(t *testing.T) {
	cfg := Config{MinFreeBytes: 1 * gb, MinFreePercentage: 0.05, MaxStorageBytes: 100 * gb}
	r := Calculate(cfg, 500*gb, 400*gb, 120*gb)
	assert.True(t, r.OverBudget)
	assert.Equal(t, uint64(20*gb), r.DeficitBytes)
}

func TestHysteresisEdge(t *testing.T) {
	cfg := Config{MinFreeBytes: 1 * gb, MinFreePercentage: 0, MaxStorageBytes: 100 * gb}
	r := Calculate(cfg, 500*gb, 400*gb, 100*gb-30*mb)
	assert.Equal(t, uint64(0), r.BudgetBytes)
	assert.True(t, r.OverBudget)
}

func TestFullBudgetPath(t *testing.T) {
	cfg := Config{MinFreeBytes: 1 * gb, MinFreePercentage: 0, MaxStorageBytes: 100 * gb}
	r := Calculate(cfg, 500*gb, 400*gb, 80*gb)
	assert.Equal(t, uint64(20*gb-50*mb), r.BudgetBytes)
}

func TestOverBudgetImpliesZeroBudget(t *testing.T) {
	cfg := Config{MinFreeBytes: 1 * gb, MinFreePercentage: 0.05, MaxStorageBytes: 10 * gb}
	for _, usage := range []uint64{0, 5 * gb, 9 * gb, 11 * gb, 50 * gb} {
		r := Calculate(cfg, 20*gb, 15*gb, usage)
		if r.OverBudget {
			assert.Equal(t, uint64(0), r.BudgetBytes)
		}
	}
}
