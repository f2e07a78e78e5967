package models

// Category is the fixed set of complaint categories used for scoring and routing.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryUtilities      Category = "utilities"
	CategorySanitation     Category = "sanitation"
	CategoryTraffic        Category = "traffic"
	CategoryPublicSafety   Category = "public_safety"
	CategoryEnvironment    Category = "environment"
	CategoryHealth         Category = "health"
	CategoryOther          Category = "other"
)

var Categories = []Category{
	CategoryInfrastructure,
	CategoryUtilities,
	CategorySanitation,
	CategoryTraffic,
	CategoryPublicSafety,
	CategoryEnvironment,
	CategoryHealth,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority is the coarse tier derived from a priority score.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Status is a complaint's position in the resolution lifecycle.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Statuses is ordered by lifecycle stage.
var Statuses = []Status{StatusSubmitted, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed}

// OpenStatuses are the statuses counted as pending work.
var OpenStatuses = []Status{StatusSubmitted, StatusAssigned, StatusInProgress}

// DoneStatuses are the statuses counted as resolved.
var DoneStatuses = []Status{StatusResolved, StatusClosed}

func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the lifecycle stage index, or -1 for an unknown status.
func (s Status) Rank() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return -1
}

func (s Status) IsOpen() bool {
	return s == StatusSubmitted || s == StatusAssigned || s == StatusInProgress
}

func (s Status) IsDone() bool {
	return s == StatusResolved || s == StatusClosed
}
