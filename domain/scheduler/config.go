package scheduler

import "os"

// Config holds the schedules for the built-in recurring tasks. Each can
// be overridden with an environment variable.
type Config struct {
	LateStartsSchedule   string
	EarlyEndsSchedule    string
	MissedShiftsSchedule string
	ActiveShiftsSchedule string
	WeeklyReportSchedule string
}

func NewConfig() Config {
	return Config{
		LateStartsSchedule:   envOr("SCHEDULE_LATE_STARTS", "*/5 * * * *"),
		EarlyEndsSchedule:    envOr("SCHEDULE_EARLY_ENDS", "*/10 * * * *"),
		MissedShiftsSchedule: envOr("SCHEDULE_MISSED_SHIFTS", "*/15 * * * *"),
		ActiveShiftsSchedule: envOr("SCHEDULE_ACTIVE_SHIFTS", "*/30 * * * *"),
		WeeklyReportSchedule: envOr("SCHEDULE_WEEKLY_REPORT", "0 9 * * 1"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
