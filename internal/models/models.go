package models

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a task
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every valid status in display order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ErrInvalidStatus is returned for any status outside Statuses
var ErrInvalidStatus = errors.New("invalid task status")

// IsValid reports whether s is one of the three known statuses
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Label returns the human readable form of the status
func (s Status) Label() string {
	if s == StatusInProgress {
		return "In Progress"
	}
	return string(s)
}

// ParseStatus converts a raw wire value into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Task represents a single task held by the remote store.
// A zero ID marks a draft that the remote store has not confirmed.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	DueDate     time.Time
}

// IsDraft reports whether the task still lacks a server-assigned id
func (t Task) IsDraft() bool {
	return t.ID == 0
}

// Draft holds the raw, form-local fields of a task that is being created
type Draft struct {
	Title       string
	Description string
	Day         string
	Month       string
	Year        string
	Time        string
}

// Filter selects tasks by status; FilterAll selects everything
type Filter string

const FilterAll Filter = "All"

// Filters lists the filter options in display order
var Filters = []Filter{FilterAll, Filter(StatusPending), Filter(StatusInProgress), Filter(StatusCompleted)}

// Label returns the human readable form of the filter
func (f Filter) Label() string {
	if f == FilterAll {
		return "All"
	}
	return Status(f).Label()
}

// Matches reports whether t is selected by the filter
func (f Filter) Matches(t Task) bool {
	return f == FilterAll || Status(f) == t.Status
}

// ParseFilter converts a raw value into a Filter
func ParseFilter(raw string) (Filter, error) {
	if Filter(raw) == FilterAll {
		return FilterAll, nil
	}
	s, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	return Filter(s), nil
}
