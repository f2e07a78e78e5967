package models

// DashboardStats is the summary shown on the dashboard page.
type DashboardStats struct {
	TotalComplaints        int64   `json:"total_complaints"`
	CriticalComplaints     int64   `json:"critical_complaints"`
	HighPriorityComplaints int64   `json:"high_priority_complaints"`
	ResolvedToday          int64   `json:"resolved_today"`
	AvgResolutionTime      float64 `json:"avg_resolution_time"`
	PendingComplaints      int64   `json:"pending_complaints"`
}

// DepartmentPerformance holds one department's row on the performance page.
type DepartmentPerformance struct {
	DepartmentID           string  `json:"department_id"`
	DepartmentName         string  `json:"department_name"`
	TotalComplaints        int64   `json:"total_complaints"`
	ResolvedComplaints     int64   `json:"resolved_complaints"`
	AvgResolutionTimeHours float64 `json:"avg_resolution_time_hours"`
	AvgRating              float64 `json:"avg_rating"`
	PendingComplaints      int64   `json:"pending_complaints"`
}

// Grade is the coarse performance badge derived from a resolution rate.
type Grade string

const (
	GradeExcellent        Grade = "excellent"
	GradeGood             Grade = "good"
	GradeNeedsImprovement Grade = "needs_improvement"
)

// GradedPerformance is a performance row with its derived rate and grade.
type GradedPerformance struct {
	DepartmentPerformance
	ResolutionRatePercent int64 `json:"resolution_rate_percent"`
	Grade                 Grade `json:"grade"`
}

// Insights are the derived highlights on the performance page.
type Insights struct {
	BestPerforming *GradedPerformance      `json:"best_performing,omitempty"`
	NeedsAttention []DepartmentPerformance `json:"needs_attention"`
	HighVolume     []DepartmentPerformance `json:"high_volume"`
}

// PerformanceSummary aggregates all departments into one set of headline numbers.
type PerformanceSummary struct {
	TotalComplaints        int64   `json:"total_complaints"`
	TotalResolved          int64   `json:"total_resolved"`
	TotalPending           int64   `json:"total_pending"`
	ResolutionRatePercent  int64   `json:"resolution_rate_percent"`
	AvgRating              float64 `json:"avg_rating"`
	AvgResolutionTimeHours float64 `json:"avg_resolution_time_hours"`
}

// PerformanceReport is the full payload of the performance page.
type PerformanceReport struct {
	Departments []GradedPerformance `json:"departments"`
	Insights    Insights            `json:"insights"`
	Summary     PerformanceSummary  `json:"summary"`
}
