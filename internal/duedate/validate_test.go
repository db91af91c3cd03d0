package duedate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/ctm/internal/models"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func TestValidate_RealFutureDate(t *testing.T) {
	got, errs := Validate("5", "3", "2027", "14:30", testNow, time.UTC)

	require.True(t, errs.Valid(), "unexpected errors: %v", errs)
	assert.Equal(t, time.Date(2027, 3, 5, 14, 30, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestValidate_CivilComponentsMatchInputs(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	cases := []struct{ day, month, year, hhmm string }{
		{"1", "1", "2027", "00:00"},
		{"29", "2", "2028", "23:59"},
		{"31", "12", "2026", "09:05"},
		{"01", "07", "2027", "18:45"},
	}
	for _, tc := range cases {
		got, errs := Validate(tc.day, tc.month, tc.year, tc.hhmm, testNow, london)
		require.True(t, errs.Valid(), "%v: %v", tc, errs)

		civil := got.In(london)
		assert.Equal(t, CanonicalDate(tc.day, tc.month, tc.year), civil.Format("2006-01-02"))
		assert.Equal(t, tc.hhmm, civil.Format("15:04"))
	}
}

func TestValidate_UsesInputLocation(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	got, errs := Validate("1", "7", "2027", "09:00", testNow, london)
	require.True(t, errs.Valid())
	assert.Equal(t, time.Date(2027, 7, 1, 8, 0, 0, 0, time.UTC), got)
}

func TestValidate_MissingFields(t *testing.T) {
	_, errs := Validate("", "", "", "", testNow, time.UTC)
	assert.Equal(t, Errors{
		FieldDueDate: MsgEnterDueDate,
		FieldDay:     MsgMissingDay,
		FieldMonth:   MsgMissingMonth,
		FieldYear:    MsgMissingYear,
	}, errs)

	_, errs = Validate("12", " ", "2027", "bad", testNow, time.UTC)
	assert.Equal(t, Errors{
		FieldDueDate: MsgEnterDueDate,
		FieldMonth:   MsgMissingMonth,
	}, errs, "time format is not checked while a date field is missing")
}

func TestValidate_NotARealDate(t *testing.T) {
	for _, year := range []string{"2020", "2027", "2028", "2100"} {
		_, errs := Validate("31", "02", year, "10:00", testNow, time.UTC)
		assert.Equal(t, MsgNotReal, errs[FieldDueDate], year)
	}

	cases := []struct{ day, month, year string }{
		{"32", "1", "2027"},
		{"1", "13", "2027"},
		{"0", "5", "2027"},
		{"29", "2", "2027"},
		{"31", "4", "2027"},
		{"ab", "4", "2027"},
		{"1", "4", "20x7"},
		{"-1", "4", "2027"},
	}
	for _, tc := range cases {
		_, errs := Validate(tc.day, tc.month, tc.year, "10:00", testNow, time.UTC)
		assert.Equal(t, MsgNotReal, errs[FieldDueDate], "%v", tc)
		assert.Len(t, errs, 1, "%v", tc)
	}
}

func TestValidate_MustBeInFuture(t *testing.T) {
	// one second after the minute the user typed
	now := time.Date(2026, 10, 17, 12, 0, 1, 0, time.UTC)
	_, errs := Validate("17", "10", "2026", "12:00", now, time.UTC)
	assert.Equal(t, Errors{FieldDueDate: MsgNotFuture}, errs)

	// equal to now is not strictly later
	_, errs = Validate("17", "10", "2026", "12:00", testNow, time.UTC)
	assert.Equal(t, MsgNotFuture, errs[FieldDueDate])

	got, errs := Validate("17", "10", "2026", "12:01", testNow, time.UTC)
	require.True(t, errs.Valid())
	assert.True(t, got.After(testNow))
}

func TestValidate_TimeFormat(t *testing.T) {
	for _, hhmm := range []string{"", "9:30", "0930", "09:3", "ab:cd", "09:30:00"} {
		_, errs := Validate("5", "3", "2027", hhmm, testNow, time.UTC)
		assert.Equal(t, Errors{FieldTime: MsgTimeFormat}, errs, hhmm)
	}

	for _, hhmm := range []string{"24:00", "12:60", "99:99"} {
		_, errs := Validate("5", "3", "2027", hhmm, testNow, time.UTC)
		assert.Equal(t, Errors{FieldTime: MsgTime24Hour}, errs, hhmm)
	}
}

func TestValidate_RealnessAndTimeBothReported(t *testing.T) {
	_, errs := Validate("31", "2", "2027", "7pm", testNow, time.UTC)
	assert.Equal(t, Errors{
		FieldDueDate: MsgNotReal,
		FieldTime:    MsgTimeFormat,
	}, errs)
}

func TestValidate_NilLocationDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Validate("5", "3", "2027", "10:00", testNow, nil)
	})
}

func TestValidateDraft(t *testing.T) {
	task, errs := ValidateDraft(models.Draft{
		Title:       "  Prepare court filing ",
		Description: "Johnson case",
		Day:         "5",
		Month:       "3",
		Year:        "2027",
		Time:        "14:30",
	}, testNow, time.UTC)

	require.True(t, errs.Valid())
	assert.True(t, task.IsDraft())
	assert.Equal(t, "Prepare court filing", task.Title)
	assert.Equal(t, "Johnson case", task.Description)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, time.Date(2027, 3, 5, 14, 30, 0, 0, time.UTC), task.DueDate)
}

func TestValidateDraft_WhitespaceTitle(t *testing.T) {
	_, errs := ValidateDraft(models.Draft{
		Title: "   ",
		Day:   "5", Month: "3", Year: "2027", Time: "14:30",
	}, testNow, time.UTC)

	assert.Equal(t, Errors{FieldTitle: MsgTitleRequired}, errs)

	err := errs.Err()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "validation failed: title: Title is required", err.Error())
}

func TestErrorsErr_NilWhenValid(t *testing.T) {
	assert.NoError(t, Errors{}.Err())
}

func TestCanonicalDate(t *testing.T) {
	assert.Equal(t, "2027-03-05", CanonicalDate("5", "3", "2027"))
	assert.Equal(t, "2027-12-25", CanonicalDate("25", "12", "2027"))
	assert.Equal(t, "2027-13-32", CanonicalDate("32", "13", "2027"))
}
