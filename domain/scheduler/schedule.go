package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Schedule is a parsed task schedule. Supported forms:
//
//	*/N * * * *   every N minutes (1..59)
//	0 */N * * *   every N hours (1..23)
//	M H * * *     daily at H:M
//	M H * * D     weekly on day D (0=Sunday) at H:M
//
// Interval forms run on a fixed period. Wall-clock forms follow the
// cron field semantics.
type Schedule struct {
	Expr  string
	Every time.Duration // zero for wall-clock forms
}

// CronSpec returns the spec string handed to the cron runner.
func (s Schedule) CronSpec() string {
	if s.Every > 0 {
		return "@every " + s.Every.String()
	}
	return s.Expr
}

// ParseSchedule validates expr against the supported forms. Anything
// else returns ErrInvalidSchedule.
func ParseSchedule(expr string) (Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return Schedule{}, invalidSchedule(expr, "expected 5 fields")
	}

	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	if dom != "*" || month != "*" {
		return Schedule{}, invalidSchedule(expr, "day-of-month and month must be *")
	}

	// */N * * * *
	if n, ok := stepValue(minute); ok {
		if hour != "*" || dow != "*" {
			return Schedule{}, invalidSchedule(expr, "minute step allows no other fields")
		}
		if n < 1 || n > 59 {
			return Schedule{}, invalidSchedule(expr, "minute step out of range")
		}
		return Schedule{Expr: expr, Every: time.Duration(n) * time.Minute}, nil
	}

	// 0 */N * * *
	if n, ok := stepValue(hour); ok {
		if minute != "0" || dow != "*" {
			return Schedule{}, invalidSchedule(expr, "hour step requires minute 0")
		}
		if n < 1 || n > 23 {
			return Schedule{}, invalidSchedule(expr, "hour step out of range")
		}
		return Schedule{Expr: expr, Every: time.Duration(n) * time.Hour}, nil
	}

	// M H * * *  and  M H * * D
	if _, err := fieldValue(minute, 0, 59); err != nil {
		return Schedule{}, invalidSchedule(expr, "bad minute")
	}
	if _, err := fieldValue(hour, 0, 23); err != nil {
		return Schedule{}, invalidSchedule(expr, "bad hour")
	}

	if dow != "*" {
		if _, err := fieldValue(dow, 0, 6); err != nil {
			return Schedule{}, invalidSchedule(expr, "bad day-of-week")
		}
	}

	return Schedule{Expr: expr}, nil
}

func invalidSchedule(expr, reason string) error {
	return apperror.ErrInvalidSchedule.
		WithMessage(fmt.Sprintf("invalid schedule %q: %s", expr, reason)).
		WithDetails(map[string]any{"schedule": expr})
}

// stepValue parses a "*/N" field.
func stepValue(field string) (int, bool) {
	rest, ok := strings.CutPrefix(field, "*/")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func fieldValue(field string, min, max int) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, fmt.Errorf("value %d out of range [%d,%d]", n, min, max)
	}
	return n, nil
}
