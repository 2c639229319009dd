package rating

// Employee rating statuses.
const (
	StatusActive     = "active"
	StatusWarning    = "warning"
	StatusTerminated = "terminated"
)

// Thresholds for status transitions, inclusive.
const (
	TerminationThreshold = 30
	WarningThreshold     = 50
)

// Calculate derives a rating from the accumulated penalty percent.
// Ratings are clamped to [0, 100].
func Calculate(totalPenalty int) int {
	r := 100 - totalPenalty
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

// StatusFor maps a rating to an employee status.
func StatusFor(rating int) string {
	switch {
	case rating <= TerminationThreshold:
		return StatusTerminated
	case rating <= WarningThreshold:
		return StatusWarning
	default:
		return StatusActive
	}
}
