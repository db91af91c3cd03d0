package duedate

import (
	"fmt"
	"sort"
	"strings"
)

// Field keys of a ValidationErrorSet
const (
	FieldTitle   = "title"
	FieldDueDate = "dueDate"
	FieldDay     = "dueDateDay"
	FieldMonth   = "dueDateMonth"
	FieldYear    = "dueDateYear"
	FieldTime    = "dueTime"
)

const (
	MsgTitleRequired = "Title is required"
	MsgEnterDueDate  = "Enter your due date"
	MsgMissingDay    = "Due date must include a day"
	MsgMissingMonth  = "Due date must include a month"
	MsgMissingYear   = "Due date must include a year"
	MsgNotReal       = "Due date must be a real date"
	MsgNotFuture     = "Due date must be in the future"
	MsgTimeFormat    = "Enter a valid time in the format HH:MM"
	MsgTime24Hour    = "Time must be in the valid 24-hour format"
)

// Errors maps a field key to the one message reported for it.
// An empty set means the input is valid.
type Errors map[string]string

// Valid reports whether no field failed
func (e Errors) Valid() bool {
	return len(e) == 0
}

// add records msg for field unless the field already failed
func (e Errors) add(field, msg string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = msg
}

// Err returns the set as a *ValidationError, or nil when it is empty
func (e Errors) Err() error {
	if e.Valid() {
		return nil
	}
	return &ValidationError{Fields: e}
}

// ValidationError is returned when a draft fails validation. It never
// reaches the network layer.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
