package models

import "time"

// ComplaintFilter is an immutable description of a complaint query. Zero-valued
// fields do not constrain the result. Build one per request and pass it by value.
type ComplaintFilter struct {
	Statuses      []Status
	Priorities    []Priority
	Categories    []Category
	DepartmentID  string
	Search        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ResolvedSince *time.Time
	Limit         int
}

// WithStatuses returns a copy of f constrained to the given statuses.
func (f ComplaintFilter) WithStatuses(statuses ...Status) ComplaintFilter {
	f.Statuses = append([]Status(nil), statuses...)
	return f
}

// WithPriority returns a copy of f constrained to a single priority tier.
func (f ComplaintFilter) WithPriority(p Priority) ComplaintFilter {
	f.Priorities = []Priority{p}
	return f
}

// WithDepartment returns a copy of f scoped to one department.
func (f ComplaintFilter) WithDepartment(id string) ComplaintFilter {
	f.DepartmentID = id
	return f
}

// WithResolvedSince returns a copy of f keeping complaints resolved at or after t.
func (f ComplaintFilter) WithResolvedSince(t time.Time) ComplaintFilter {
	f.ResolvedSince = &t
	return f
}

// Near narrows marker queries to a radius around a point.
type Near struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}
