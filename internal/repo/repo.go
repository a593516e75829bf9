// Package repo implements the ticket repository: the query and
// mutation API the HTTP layer calls. Every operation re-reads the
// collection from the store; nothing is cached across requests.
package repo

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AbhignaKuchukulla/Issue-buddy/internal/store"
	"github.com/AbhignaKuchukulla/Issue-buddy/internal/ticket"
)

// ErrNotFound is returned when no ticket has the requested id.
var ErrNotFound = errors.New("ticket not found")

// ValidationError carries the human-readable rule violations for a
// rejected write. The store is never touched when validation fails.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

const (
	// DefaultPageSize is what callers should supply when the request
	// carries no usable pageSize. The repository itself only clamps.
	DefaultPageSize = 10

	maxPageSize = 50
)

// Query holds the list parameters. Zero values mean "no filter" for Q,
// Status and Priority; an unrecognized Status or Priority is likewise
// a no-op filter, not an error. Page and PageSize are clamped into
// range: anything below 1 becomes 1, a PageSize above 50 becomes 50.
type Query struct {
	Q        string
	Status   string
	Priority string
	Page     int
	PageSize int
}

// Page is one page of list results. Total counts the filtered set
// before pagination.
type Page struct {
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Data     []ticket.Ticket `json:"data"`
}

// Repository exposes CRUD and query operations over the store. The
// clock is a field so tests can pin timestamps.
type Repository struct {
	store *store.Store
	now   func() time.Time
}

// New returns a repository backed by st.
func New(st *store.Store) *Repository {
	return &Repository{store: st, now: time.Now}
}

// List returns the tickets matching q, sorted by most recently updated
// first and paginated. Out-of-range pages return an empty Data slice
// with the correct Total. List never fails.
func (r *Repository) List(q Query) Page {
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	var matched []ticket.Ticket
	r.store.View(func(tickets []ticket.Ticket) {
		for _, t := range tickets {
			if needle != "" &&
				!strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
			if ticket.ValidStatus(q.Status) && t.Status != ticket.Status(q.Status) {
				continue
			}
			if ticket.ValidPriority(q.Priority) && t.Priority != ticket.Priority(q.Priority) {
				continue
			}
			matched = append(matched, t)
		}
	})

	// Stable keeps insertion order for equal timestamps.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total := len(matched)
	data := []ticket.Ticket{}
	if start := (page - 1) * pageSize; start < total {
		end := start + pageSize
		if end > total {
			end = total
		}
		data = matched[start:end]
	}

	return Page{Total: total, Page: page, PageSize: pageSize, Data: data}
}

// Get returns the ticket with the given id, or ErrNotFound.
func (r *Repository) Get(id string) (ticket.Ticket, error) {
	var (
		found bool
		t     ticket.Ticket
	)
	r.store.View(func(tickets []ticket.Ticket) {
		for _, candidate := range tickets {
			if candidate.ID == id {
				t = candidate
				found = true
				return
			}
		}
	})
	if !found {
		return ticket.Ticket{}, ErrNotFound
	}
	return t, nil
}

// Create validates the payload in full mode, assigns id and
// timestamps, and inserts the new ticket at the front of the
// collection. The write is durable before Create returns.
func (r *Repository) Create(p *ticket.Payload) (ticket.Ticket, error) {
	if errs := p.Validate(false); len(errs) > 0 {
		return ticket.Ticket{}, &ValidationError{Errors: errs}
	}

	now := r.now().UTC()
	created := ticket.Ticket{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.ApplyTo(&created)

	err := r.store.Mutate(func(tickets []ticket.Ticket) ([]ticket.Ticket, error) {
		return append([]ticket.Ticket{created}, tickets...), nil
	})
	if err != nil {
		return ticket.Ticket{}, err
	}
	return created, nil
}

// Replace overwrites every user-settable field of an existing ticket
// with the full-mode-validated payload. ID and CreatedAt are
// preserved; an absent assignee resets the field to empty.
func (r *Repository) Replace(id string, p *ticket.Payload) (ticket.Ticket, error) {
	var updated ticket.Ticket
	err := r.store.Mutate(func(tickets []ticket.Ticket) ([]ticket.Ticket, error) {
		idx := indexOf(tickets, id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		if errs := p.Validate(false); len(errs) > 0 {
			return nil, &ValidationError{Errors: errs}
		}

		t := tickets[idx]
		t.Assignee = ""
		p.ApplyTo(&t)
		t.UpdatedAt = r.now().UTC()
		tickets[idx] = t
		updated = t
		return tickets, nil
	})
	if err != nil {
		return ticket.Ticket{}, err
	}
	return updated, nil
}

// Update merges the partial-mode-validated payload onto an existing
// ticket. Fields absent from the payload keep their prior values.
func (r *Repository) Update(id string, p *ticket.Payload) (ticket.Ticket, error) {
	var updated ticket.Ticket
	err := r.store.Mutate(func(tickets []ticket.Ticket) ([]ticket.Ticket, error) {
		idx := indexOf(tickets, id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		if errs := p.Validate(true); len(errs) > 0 {
			return nil, &ValidationError{Errors: errs}
		}

		t := tickets[idx]
		p.ApplyTo(&t)
		t.UpdatedAt = r.now().UTC()
		tickets[idx] = t
		updated = t
		return tickets, nil
	})
	if err != nil {
		return ticket.Ticket{}, err
	}
	return updated, nil
}

// Delete removes the ticket with the given id. The removal is durable
// before Delete returns.
func (r *Repository) Delete(id string) error {
	return r.store.Mutate(func(tickets []ticket.Ticket) ([]ticket.Ticket, error) {
		idx := indexOf(tickets, id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		return append(tickets[:idx], tickets[idx+1:]...), nil
	})
}

func indexOf(tickets []ticket.Ticket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}
