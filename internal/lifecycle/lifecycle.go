// Package lifecycle decides what a status change does to a complaint.
//
// A status change is planned into exactly one Transition variant. Each variant
// carries only the fields it is allowed to touch, and Changes renders it as the
// partial update that is written to the store.
package lifecycle

import (
	"civictriage/backend/internal/models"
	"fmt"
	"time"
)

// Transition is one of Assign, Resolve or Advance.
type Transition interface {
	Target() models.Status
	Changes() map[string]interface{}
	sealed()
}

// Assign moves a complaint to assigned. At is nil when assigned_at was already set.
type Assign struct {
	At *time.Time
}

// Resolve moves a complaint to resolved or closed and stamps resolved_at.
type Resolve struct {
	Status models.Status
	At     time.Time
}

// Advance moves a complaint to submitted or in_progress without touching timestamps.
type Advance struct {
	Status models.Status
}

func (Assign) Target() models.Status    { return models.StatusAssigned }
func (r Resolve) Target() models.Status { return r.Status }
func (a Advance) Target() models.Status { return a.Status }

func (a Assign) Changes() map[string]interface{} {
	changes := map[string]interface{}{"status": string(models.StatusAssigned)}
	if a.At != nil {
		changes["assigned_at"] = *a.At
	}
	return changes
}

func (r Resolve) Changes() map[string]interface{} {
	return map[string]interface{}{
		"status":      string(r.Status),
		"resolved_at": r.At,
	}
}

func (a Advance) Changes() map[string]interface{} {
	return map[string]interface{}{"status": string(a.Status)}
}

func (Assign) sealed()  {}
func (Resolve) sealed() {}
func (Advance) sealed() {}

// Policy controls which status jumps are accepted.
type Policy string

const (
	// Permissive accepts any move between known statuses.
	Permissive Policy = "permissive"
	// ForwardOnly rejects moves to an earlier stage.
	ForwardOnly Policy = "forward_only"
	// Sequential accepts staying put or moving exactly one stage forward.
	Sequential Policy = "sequential"
)

// ParsePolicy accepts the names used in LIFECYCLE_POLICY; empty means Permissive.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "", Permissive:
		return Permissive, nil
	case ForwardOnly, Sequential:
		return Policy(name), nil
	default:
		return "", fmt.Errorf("unknown lifecycle policy %q", name)
	}
}

// Allows reports whether the policy accepts moving from one status to another.
func (p Policy) Allows(from, to models.Status) bool {
	switch p {
	case ForwardOnly:
		return to.Rank() >= from.Rank()
	case Sequential:
		step := to.Rank() - from.Rank()
		return step == 0 || step == 1
	default:
		return true
	}
}

// Plan validates a requested status and returns the transition to persist.
func Plan(current *models.Complaint, next models.Status, now time.Time, policy Policy) (Transition, error) {
	if !next.Valid() {
		return nil, models.NewValidationError("status", "error.status_invalid",
			fmt.Sprintf("unknown status %q", next))
	}
	if current != nil && current.Status.Valid() && !policy.Allows(current.Status, next) {
		return nil, models.NewValidationError("status", "error.transition_rejected",
			fmt.Sprintf("cannot move from %s to %s", current.Status, next))
	}

	switch next {
	case models.StatusAssigned:
		if current != nil && current.AssignedAt != nil {
			return Assign{}, nil
		}
		at := now
		return Assign{At: &at}, nil
	case models.StatusResolved, models.StatusClosed:
		return Resolve{Status: next, At: now}, nil
	default:
		return Advance{Status: next}, nil
	}
}

// Apply mirrors a transition onto an in-memory complaint.
func Apply(c *models.Complaint, t Transition) {
	c.Status = t.Target()
	switch v := t.(type) {
	case Assign:
		if v.At != nil {
			at := *v.At
			c.AssignedAt = &at
		}
	case Resolve:
		at := v.At
		c.ResolvedAt = &at
	}
}
