// Package actions owns the sidebar's pending action list.
package actions

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/db"
)

// ErrActionNotFound is returned when toggling an unknown action.
var ErrActionNotFound = errors.New("action not found")

// Priority ranks a pending action.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PendingAction is a to-do item shown in the sidebar.
type PendingAction struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	Priority    Priority
	Completed   bool
}

// Store is the persistence the list needs. *db.Store satisfies it.
type Store interface {
	Actions() ([]db.Action, error)
	SeedActions([]db.Action) error
	SetActionCompleted(id string, completed bool) (bool, error)
}

// Defaults is the fixed list the dashboard starts with.
func Defaults() []PendingAction {
	return []PendingAction{
		{
			ID:          "follow-up-sarah",
			Title:       "Follow-up with Sarah on Q4 budget",
			Description: "Confirm the revised Q4 budget numbers before the finance review.",
			DueDate:     "Due in 2 hours",
			Priority:    PriorityHigh,
		},
		{
			ID:          "review-board-deck",
			Title:       "Review board presentation",
			Description: "Walk through the strategy deck ahead of the board session.",
			DueDate:     "Due tomorrow",
			Priority:    PriorityMedium,
		},
		{
			ID:          "send-book-excerpt",
			Title:       "Send book excerpt to team",
			Description: "Share the leadership excerpt with the executive team.",
			DueDate:     "Due Friday",
			Priority:    PriorityLow,
		},
	}
}

// List serialises toggles against the store.
type List struct {
	store Store
	log   zerolog.Logger
	mu    sync.Mutex
}

// NewList seeds store with seed and returns the list over it.
func NewList(store Store, seed []PendingAction, log zerolog.Logger) (*List, error) {
	rows := make([]db.Action, 0, len(seed))
	for _, a := range seed {
		rows = append(rows, toRow(a))
	}
	if err := store.SeedActions(rows); err != nil {
		return nil, fmt.Errorf("seed actions: %w", err)
	}
	return &List{store: store, log: log.With().Str("component", "actions").Logger()}, nil
}

// All returns every action in display order.
func (l *List) All() ([]PendingAction, error) {
	rows, err := l.store.Actions()
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	out := make([]PendingAction, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Pending returns actions not yet completed.
func (l *List) Pending() ([]PendingAction, error) {
	return l.filter(false)
}

// Completed returns completed actions.
func (l *List) Completed() ([]PendingAction, error) {
	return l.filter(true)
}

// Toggle flips the completed flag of id and returns the updated action.
func (l *List) Toggle(id string) (PendingAction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all, err := l.All()
	if err != nil {
		return PendingAction{}, err
	}
	for _, a := range all {
		if a.ID != id {
			continue
		}
		a.Completed = !a.Completed
		found, err := l.store.SetActionCompleted(id, a.Completed)
		if err != nil {
			return PendingAction{}, fmt.Errorf("toggle %s: %w", id, err)
		}
		if !found {
			break
		}
		l.log.Debug().Str("action", id).Bool("completed", a.Completed).Msg("action toggled")
		return a, nil
	}
	return PendingAction{}, fmt.Errorf("toggle %s: %w", id, ErrActionNotFound)
}

func (l *List) filter(completed bool) ([]PendingAction, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	var out []PendingAction
	for _, a := range all {
		if a.Completed == completed {
			out = append(out, a)
		}
	}
	return out, nil
}

func toRow(a PendingAction) db.Action {
	return db.Action{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		Priority:    string(a.Priority),
		Completed:   a.Completed,
	}
}

func fromRow(r db.Action) PendingAction {
	return PendingAction{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    Priority(r.Priority),
		Completed:   r.Completed,
	}
}
