package monitoring

import (
	"time"

	"github.com/shiftwatch/shiftwatch/domain/violations"
)

// Detection thresholds. Fixed constants, not configurable per company.
const (
	lateThreshold     = 15 * time.Minute
	lateSevereAfter   = 30 * time.Minute
	earlyThreshold    = 15 * time.Minute
	earlySevereAfter  = 30 * time.Minute
	missedThreshold   = 60 * time.Minute
	missedSevereAfter = 120 * time.Minute

	// Continuous work without a break.
	workBand1 = 4 * time.Hour
	workBand2 = 6 * time.Hour
	workBand3 = 8 * time.Hour

	// Open break limits.
	breakLimit       = 60 * time.Minute
	breakSevereAfter = 120 * time.Minute
)

// Detection is the in-memory result of one detection rule applied to
// one shift. Nil means no violation.
type Detection struct {
	Type     string
	Severity int
	Minutes  int
}

// DetectLateStart flags an actual start more than 15 minutes after the
// planned start. Severity 2 above 30 minutes.
func DetectLateStart(plannedStart, actualStart time.Time) *Detection {
	late := actualStart.Sub(plannedStart)
	if late <= lateThreshold {
		return nil
	}
	severity := 1
	if late > lateSevereAfter {
		severity = 2
	}
	return &Detection{
		Type:     violations.TypeLateStart,
		Severity: severity,
		Minutes:  int(late.Minutes()),
	}
}

// DetectEarlyEnd flags an actual end more than 15 minutes before the
// planned end. Severity 2 above 30 minutes.
func DetectEarlyEnd(plannedEnd, actualEnd time.Time) *Detection {
	early := plannedEnd.Sub(actualEnd)
	if early <= earlyThreshold {
		return nil
	}
	severity := 1
	if early > earlySevereAfter {
		severity = 2
	}
	return &Detection{
		Type:     violations.TypeEarlyEnd,
		Severity: severity,
		Minutes:  int(early.Minutes()),
	}
}

// DetectMissedShift flags a shift still not started more than 60
// minutes past its planned start. Severity 2 above 120 minutes.
func DetectMissedShift(plannedStart, now time.Time) *Detection {
	overdue := now.Sub(plannedStart)
	if overdue <= missedThreshold {
		return nil
	}
	severity := 1
	if overdue > missedSevereAfter {
		severity = 2
	}
	return &Detection{
		Type:     violations.TypeMissedShift,
		Severity: severity,
		Minutes:  int(overdue.Minutes()),
	}
}

// DetectContinuousWork flags an unbroken work stretch above 4 hours,
// with severity bands at 4, 6 and 8 hours.
func DetectContinuousWork(stretch time.Duration) *Detection {
	if stretch <= workBand1 {
		return nil
	}
	severity := 1
	switch {
	case stretch > workBand3:
		severity = 3
	case stretch > workBand2:
		severity = 2
	}
	return &Detection{
		Type:     violations.TypeLongBreak,
		Severity: severity,
		Minutes:  int(stretch.Minutes()),
	}
}

// DetectOpenBreak flags a break that was started but never ended,
// once it runs past the allowed break time. Severity 2 past two hours.
func DetectOpenBreak(startedAt, now time.Time) *Detection {
	elapsed := now.Sub(startedAt)
	if elapsed <= breakLimit {
		return nil
	}
	severity := 1
	if elapsed > breakSevereAfter {
		severity = 2
	}
	return &Detection{
		Type:     violations.TypeNoBreakEnd,
		Severity: severity,
		Minutes:  int(elapsed.Minutes()),
	}
}
