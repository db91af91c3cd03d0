// Package duedate turns the four raw due-date fields of the task form into a
// validated instant, and decides whether a task is overdue.
package duedate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tgienger/ctm/internal/models"
)

var (
	digitsPattern = regexp.MustCompile(`^\d+$`)
	clockPattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidateDraft validates a whole creation form. On success it returns a
// Pending task carrying the validated due date; the task has no id yet.
func ValidateDraft(d models.Draft, now time.Time, loc *time.Location) (models.Task, Errors) {
	errs := Errors{}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		errs.add(FieldTitle, MsgTitleRequired)
	}

	due, dateErrs := Validate(d.Day, d.Month, d.Year, d.Time, now, loc)
	for field, msg := range dateErrs {
		errs.add(field, msg)
	}

	if !errs.Valid() {
		return models.Task{}, errs
	}
	return models.Task{
		Title:       title,
		Description: d.Description,
		Status:      models.StatusPending,
		DueDate:     due,
	}, errs
}

// Validate combines day, month, year and an HH:MM time, read as civil time in
// loc (time.Local when nil), into a UTC instant strictly after now.
//
// Each field carries at most one message. A date that is not real is reported
// as such and never also as "not in the future".
func Validate(day, month, year, hhmm string, now time.Time, loc *time.Location) (time.Time, Errors) {
	if loc == nil {
		loc = time.Local
	}
	errs := Errors{}

	day = strings.TrimSpace(day)
	month = strings.TrimSpace(month)
	year = strings.TrimSpace(year)

	if day == "" || month == "" || year == "" {
		errs.add(FieldDueDate, MsgEnterDueDate)
		if day == "" {
			errs.add(FieldDay, MsgMissingDay)
		}
		if month == "" {
			errs.add(FieldMonth, MsgMissingMonth)
		}
		if year == "" {
			errs.add(FieldYear, MsgMissingYear)
		}
		return time.Time{}, errs
	}

	date, exists := civilDate(CanonicalDate(day, month, year), loc)
	if !exists {
		errs.add(FieldDueDate, MsgNotReal)
	}

	hour, minute, clockOK := parseClock(strings.TrimSpace(hhmm), errs)
	if !exists || !clockOK {
		return time.Time{}, errs
	}

	instant := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
	if !instant.After(now) {
		errs.add(FieldDueDate, MsgNotFuture)
		return time.Time{}, errs
	}
	return instant.UTC(), errs
}

// CanonicalDate builds YYYY-MM-DD from the raw fields, left-padding day and
// month to two digits. Out-of-range values are kept as typed.
func CanonicalDate(day, month, year string) string {
	return fmt.Sprintf("%s-%s-%s", year, padTwo(month), padTwo(day))
}

func padTwo(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}

// civilDate builds midnight of the canonical date in loc and reports whether
// the date survives a round trip. time.Date normalises overflow (day 32,
// month 13, 31 February), so a mismatch means the date does not exist.
func civilDate(canonical string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(canonical, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if !digitsPattern.MatchString(p) {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	y, m, d := nums[0], nums[1], nums[2]

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// parseClock checks the HH:MM shape and the 24-hour range, recording a
// dueTime message on failure.
func parseClock(hhmm string, errs Errors) (int, int, bool) {
	if !clockPattern.MatchString(hhmm) {
		errs.add(FieldTime, MsgTimeFormat)
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(hhmm[:2])
	minute, _ := strconv.Atoi(hhmm[3:])
	if hour > 23 || minute > 59 {
		errs.add(FieldTime, MsgTime24Hour)
		return 0, 0, false
	}
	return hour, minute, true
}
