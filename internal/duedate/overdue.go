package duedate

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/tgienger/ctm/internal/clock"
	"github.com/tgienger/ctm/internal/models"
)

// DisplayLayout renders weekday, day, short month, year and a 12-hour clock
const DisplayLayout = "Mon 2 Jan 2006, 3:04 PM"

// IsOverdue reports whether a task due at due is overdue at now.
// Completed tasks are never overdue.
func IsOverdue(due time.Time, status models.Status, now time.Time) bool {
	return status != models.StatusCompleted && due.Before(now)
}

// Calculator evaluates overdue state and display strings for one named
// civil timezone. Comparisons always happen on absolute instants; the
// timezone only affects Display.
type Calculator struct {
	loc   *time.Location
	clock clock.Clock
}

// NewCalculator loads the named timezone ("Europe/London", "UTC", ...)
func NewCalculator(timezone string, c clock.Clock) (*Calculator, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Calculator{loc: loc, clock: c}, nil
}

// Location returns the display timezone
func (c *Calculator) Location() *time.Location {
	return c.loc
}

// Overdue reports whether t is overdue now
func (c *Calculator) Overdue(t models.Task) bool {
	return IsOverdue(t.DueDate.In(c.loc), t.Status, c.clock.Now())
}

// OverdueAt is Overdue for a raw wire instant. A malformed instant yields a
// *FormatError instead of a guess.
func (c *Calculator) OverdueAt(instant string, status models.Status) (bool, error) {
	due, err := ParseInstant(instant)
	if err != nil {
		return false, err
	}
	return IsOverdue(due.In(c.loc), status, c.clock.Now()), nil
}

// Display formats t as civil time in the calculator's timezone
func (c *Calculator) Display(t time.Time) string {
	return t.In(c.loc).Format(DisplayLayout)
}

// DisplayInstant formats a raw wire instant, failing on malformed input
func (c *Calculator) DisplayInstant(instant string) (string, error) {
	t, err := ParseInstant(instant)
	if err != nil {
		return "", err
	}
	return c.Display(t), nil
}
