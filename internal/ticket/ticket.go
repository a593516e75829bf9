// Package ticket defines the ticket record and the validation rules
// applied to incoming payloads before they reach the store.
package ticket

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusClosed     Status = "closed"
)

// Priority is the urgency of a ticket.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var statusValues = []Status{StatusOpen, StatusInProgress, StatusReview, StatusClosed}

var priorityValues = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ValidStatus reports whether s is one of the four enumerated status
// values. Matching is exact: no trimming, no case folding.
func ValidStatus(s string) bool {
	for _, v := range statusValues {
		if s == string(v) {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the four enumerated
// priority values.
func ValidPriority(p string) bool {
	for _, v := range priorityValues {
		if p == string(v) {
			return true
		}
	}
	return false
}

// Ticket is the sole persisted entity. ID and CreatedAt are assigned
// once at creation and never change; UpdatedAt is refreshed on every
// successful mutation.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Payload is a candidate ticket body decoded from a request. Pointer
// fields distinguish "absent" from "present but empty", which partial
// validation depends on. Unknown JSON fields are dropped at decode
// time and can never reach a stored record.
type Payload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Assignee    *string `json:"assignee"`
}

const minTextLen = 3

func joinStatuses() string {
	parts := make([]string, len(statusValues))
	for i, v := range statusValues {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinPriorities() string {
	parts := make([]string, len(priorityValues))
	for i, v := range priorityValues {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Validate checks the payload against the field rules and returns one
// human-readable message per violation, in a fixed field order. In
// full mode every field is required; a missing field fails the same
// rule as an invalid one. In partial mode only present fields are
// checked. An empty return means the payload is acceptable.
func (p *Payload) Validate(partial bool) []string {
	var errs []string

	if !partial || p.Title != nil {
		if p.Title == nil || len(strings.TrimSpace(*p.Title)) < minTextLen {
			errs = append(errs, "title must be at least 3 chars")
		}
	}
	if !partial || p.Description != nil {
		if p.Description == nil || len(strings.TrimSpace(*p.Description)) < minTextLen {
			errs = append(errs, "description must be at least 3 chars")
		}
	}
	if !partial || p.Status != nil {
		if p.Status == nil || !ValidStatus(*p.Status) {
			errs = append(errs, "status must be one of "+joinStatuses())
		}
	}
	if !partial || p.Priority != nil {
		if p.Priority == nil || !ValidPriority(*p.Priority) {
			errs = append(errs, "priority must be one of "+joinPriorities())
		}
	}

	return errs
}

// ApplyTo merges the payload's present fields onto t. Only the five
// user-settable fields are patchable; callers must validate first, so
// every present field is known to be well-formed here. Title and
// description are stored trimmed.
func (p *Payload) ApplyTo(t *Ticket) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		t.Status = Status(*p.Status)
	}
	if p.Priority != nil {
		t.Priority = Priority(*p.Priority)
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
}
