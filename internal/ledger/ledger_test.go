package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"printstock/internal/common"
)

func TestReplay(t *testing.T) {
	testCases := []struct {
		name     string
		capacity float64
		amounts  []float64
		expected float64
	}{
		{"empty ledger", 1000, nil, 1000},
		{"partial consumption", 1000, []float64{300}, 700},
		{"exact consumption", 1000, []float64{300, 700}, 0},
		{"over-consumption clamps to zero", 1000, []float64{300, 800}, 0},
		{"order independent", 1000, []float64{800, 300}, 0},
		{"fractional amounts", 500.5, []float64{100.25, 200.25}, 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Replay(tc.capacity, tc.amounts), 1e-9)
		})
	}
}

func TestSoftClampNeverRejects(t *testing.T) {
	var policy SoftClamp

	remaining, warning := policy.Apply(1000, []float64{300})
	assert.InDelta(t, 700, remaining, 1e-9)
	assert.Empty(t, warning)

	// Consuming exactly the capacity depletes without a warning
	remaining, warning = policy.Apply(1000, []float64{300, 700})
	assert.Zero(t, remaining)
	assert.Empty(t, warning)

	// Consuming beyond capacity clamps and warns, never errors
	remaining, warning = policy.Apply(1000, []float64{300, 800})
	assert.Zero(t, remaining)
	assert.Equal(t, WarnExceedsRemaining, warning)
}

func TestHardRejectEnforcesStock(t *testing.T) {
	var policy HardReject

	assert.NoError(t, policy.Check(10, 10))
	assert.NoError(t, policy.Check(10, 1))

	err := policy.Check(10, 11)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))

	err = policy.Check(10, 0)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	err = policy.Check(0, 1)
	assert.True(t, errors.Is(err, common.ErrConflict))
}
