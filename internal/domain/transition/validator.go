// Package transition holds the legal state graphs of every workflow entity.
//
// Each graph is an immutable table built once at package init. Unknown states
// have no outgoing edges; lookups never panic.
package transition

import (
	"errors"
	"fmt"
	"sort"

	"fabrication-workflow/pkg/apperror"
)

// ErrInvalidTransition matches every *Error with errors.Is
var ErrInvalidTransition = errors.New("invalid state transition")

// Validator decides whether from -> to is a legal edge of one entity kind's graph
type Validator[S ~string] struct {
	entity string
	edges  map[S]map[S]struct{}
}

// New copies table into a validator. Later changes to table have no effect.
func New[S ~string](entity string, table map[S][]S) *Validator[S] {
	edges := make(map[S]map[S]struct{}, len(table))
	for from, targets := range table {
		set := make(map[S]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		edges[from] = set
	}
	return &Validator[S]{entity: entity, edges: edges}
}

func (v *Validator[S]) Entity() string {
	return v.entity
}

func (v *Validator[S]) CanTransition(from, to S) bool {
	_, ok := v.edges[from][to]
	return ok
}

// Assert returns a *Error when from -> to is not allowed
func (v *Validator[S]) Assert(from, to S) error {
	if v.CanTransition(from, to) {
		return nil
	}
	allowed := v.AllowedFrom(from)
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return &Error{Entity: v.entity, From: string(from), To: string(to), Allowed: names}
}

// AllowedFrom lists the legal next states in lexical order
func (v *Validator[S]) AllowedFrom(from S) []S {
	set := v.edges[from]
	out := make([]S, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsTerminal reports whether state has no outgoing edges
func (v *Validator[S]) IsTerminal(state S) bool {
	return len(v.edges[state]) == 0
}

// States lists every state that appears as a table key
func (v *Validator[S]) States() []S {
	out := make([]S, 0, len(v.edges))
	for s := range v.edges {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Error describes a rejected state change
type Error struct {
	Entity  string
	From    string
	To      string
	Allowed []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidTransition
}

func (e *Error) AppError() *apperror.Error {
	return apperror.New(apperror.KindInvalidTransition, "invalid_transition", e.Error()).
		WithDetails(map[string]interface{}{
			"entity":  e.Entity,
			"from":    e.From,
			"to":      e.To,
			"allowed": e.Allowed,
		})
}
