package accessory

import "time"

// Accessory status values
const (
	StatusAvailable = "available"
	StatusInUse     = "in_use"
	StatusLowStock  = "low_stock"
	StatusDepleted  = "depleted"
)

// DeriveStatus computes the lifecycle status as a pure function of the
// authoritative fields. An open exclusive-use session pins the status
// to in_use; count-based derivation resumes once the session closes.
func DeriveStatus(remaining int, lowStockThreshold *int, inUseStartedAt *time.Time) string {
	if inUseStartedAt != nil {
		return StatusInUse
	}
	if remaining <= 0 {
		return StatusDepleted
	}
	if lowStockThreshold != nil && remaining <= *lowStockThreshold {
		return StatusLowStock
	}
	return StatusAvailable
}

type transition struct {
	from string
	to   string
}

// Exclusive-use transitions. in_use is reachable only from available,
// and only ever leads back to available; every other status change is
// count-derived, not a session transition.
var sessionTransitions = map[transition]bool{
	{StatusAvailable, StatusInUse}: true,
	{StatusInUse, StatusAvailable}: true,
}

func canTransition(from, to string) bool {
	return sessionTransitions[transition{from: from, to: to}]
}
