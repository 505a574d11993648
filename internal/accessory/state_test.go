package accessory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestDeriveStatus(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name           string
		remaining      int
		threshold      *int
		inUseStartedAt *time.Time
		expected       string
	}{
		{"stock above threshold", 10, intPtr(3), nil, StatusAvailable},
		{"no threshold configured", 1, nil, nil, StatusAvailable},
		{"stock at threshold", 3, intPtr(3), nil, StatusLowStock},
		{"stock below threshold", 2, intPtr(3), nil, StatusLowStock},
		{"zero stock", 0, intPtr(3), nil, StatusDepleted},
		{"zero stock without threshold", 0, nil, nil, StatusDepleted},
		{"open session pins in_use", 10, intPtr(3), &now, StatusInUse},
		{"open session outranks depletion", 0, nil, &now, StatusInUse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(tc.remaining, tc.threshold, tc.inUseStartedAt)
			assert.Equal(t, tc.expected, got)

			// Same inputs, same status: derivation carries no hidden state
			assert.Equal(t, got, DeriveStatus(tc.remaining, tc.threshold, tc.inUseStartedAt))
		})
	}
}

func TestSessionTransitions(t *testing.T) {
	assert.True(t, canTransition(StatusAvailable, StatusInUse))
	assert.True(t, canTransition(StatusInUse, StatusAvailable))

	assert.False(t, canTransition(StatusLowStock, StatusInUse))
	assert.False(t, canTransition(StatusDepleted, StatusInUse))
	assert.False(t, canTransition(StatusInUse, StatusInUse))
}
