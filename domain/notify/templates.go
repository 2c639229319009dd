package notify

import (
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/shiftwatch/shiftwatch/domain/violations"
)

// Reminder phases.
const (
	PhaseBeforeStart = "before_start"
	PhaseShiftStart  = "shift_start"
	PhaseShiftEnd    = "shift_end"
)

var violationTemplates = map[string]*raymond.Template{
	violations.TypeLateStart: raymond.MustParse(
		"Hi {{name}}! You started your shift {{minutes}} minutes late." +
			"{{#if severe}} This is a repeated or serious delay and affects your rating.{{/if}}",
	),
	violations.TypeEarlyEnd: raymond.MustParse(
		"Hi {{name}}! You ended your shift {{minutes}} minutes early." +
			"{{#if severe}} Leaving this early is a serious violation.{{/if}}",
	),
	violations.TypeMissedShift: raymond.MustParse(
		"Hi {{name}}! You missed your planned shift today. " +
			"Please contact your manager if something happened.",
	),
	violations.TypeLongBreak: raymond.MustParse(
		"Hi {{name}}! You have been working {{minutes}} minutes without a break. " +
			"Please take one.",
	),
	violations.TypeNoBreakEnd: raymond.MustParse(
		"Hi {{name}}! Your break has been running for {{minutes}} minutes. " +
			"Don't forget to end it when you are back.",
	),
}

var reminderTemplates = map[string]*raymond.Template{
	PhaseBeforeStart: raymond.MustParse(
		"Hi {{name}}! Your shift starts soon. Don't forget to check in.",
	),
	PhaseShiftStart: raymond.MustParse(
		"Hi {{name}}! Your shift has started. Please check in now.",
	),
	PhaseShiftEnd: raymond.MustParse(
		"Hi {{name}}! Your shift is ending. Remember to check out.",
	),
}

var weeklyReportTemplate = raymond.MustParse(
	"Weekly summary for {{name}}:\n" +
		"Rating: {{rating}}/100 ({{status}})\n" +
		"Violations this week: {{violationCount}}\n" +
		"{{#if clean}}Great week, keep it up!{{/if}}",
)

var welcomeTemplate = raymond.MustParse(
	"Welcome aboard, {{name}}! You will receive shift reminders and " +
		"updates about your schedule here.",
)

// ViolationMessage renders the outbound text for a violation
// notification.
func ViolationMessage(name, violationType string, severity, minutes int) (string, error) {
	tpl, ok := violationTemplates[violationType]
	if !ok {
		return "", fmt.Errorf("unknown notification type %q", violationType)
	}
	return tpl.Exec(map[string]any{
		"name":    name,
		"minutes": minutes,
		"severe":  severity >= 2,
	})
}

// ReminderMessage renders a shift reminder for the given phase.
func ReminderMessage(name, phase string) (string, error) {
	tpl, ok := reminderTemplates[phase]
	if !ok {
		return "", fmt.Errorf("unknown reminder phase %q", phase)
	}
	return tpl.Exec(map[string]any{"name": name})
}

// WeeklyReportMessage renders the weekly summary for one employee.
func WeeklyReportMessage(name string, ratingValue, violationCount int, status string) (string, error) {
	return weeklyReportTemplate.Exec(map[string]any{
		"name":           name,
		"rating":         ratingValue,
		"status":         status,
		"violationCount": violationCount,
		"clean":          violationCount == 0,
	})
}

// WelcomeMessage renders the onboarding greeting.
func WelcomeMessage(name string) (string, error) {
	return welcomeTemplate.Exec(map[string]any{"name": name})
}
