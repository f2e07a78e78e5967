package stats

import (
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	hundred             = decimal.NewFromInt(100)
	needsAttentionLimit = decimal.NewFromInt(config.NeedsAttentionRatePercent)
)

// ResolutionRate is resolved/total as an exact decimal; 0 for a department
// without complaints.
func ResolutionRate(row models.DepartmentPerformance) decimal.Decimal {
	if row.TotalComplaints <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(row.ResolvedComplaints).Div(decimal.NewFromInt(row.TotalComplaints))
}

// RatePercent is the resolution rate as a whole percentage, halves rounded up.
func RatePercent(row models.DepartmentPerformance) int64 {
	return ResolutionRate(row).Mul(hundred).Round(0).IntPart()
}

// GradeRow attaches the rounded rate and the badge shown on the performance card.
func GradeRow(row models.DepartmentPerformance) models.GradedPerformance {
	pct := RatePercent(row)
	grade := models.GradeNeedsImprovement
	switch {
	case pct >= config.ExcellentRatePercent:
		grade = models.GradeExcellent
	case pct >= config.GoodRatePercent:
		grade = models.GradeGood
	}
	return models.GradedPerformance{
		DepartmentPerformance: row,
		ResolutionRatePercent: pct,
		Grade:                 grade,
	}
}

// NeedsAttention reports a resolution rate under 60% with pending work left.
func NeedsAttention(row models.DepartmentPerformance) bool {
	return ResolutionRate(row).Mul(hundred).LessThan(needsAttentionLimit) && row.PendingComplaints > 0
}

// HighVolume reports more than five pending complaints.
func HighVolume(row models.DepartmentPerformance) bool {
	return row.PendingComplaints > config.HighVolumePendingThreshold
}

// BuildInsights selects the best performer and the departments to flag. The best
// performer is the first row with the strictly highest rate in iteration order.
func BuildInsights(rows []models.DepartmentPerformance) models.Insights {
	insights := models.Insights{
		NeedsAttention: []models.DepartmentPerformance{},
		HighVolume:     []models.DepartmentPerformance{},
	}
	if len(rows) == 0 {
		return insights
	}

	best := rows[0]
	for _, current := range rows[1:] {
		if ResolutionRate(current).GreaterThan(ResolutionRate(best)) {
			best = current
		}
	}
	graded := GradeRow(best)
	insights.BestPerforming = &graded

	for _, r := range rows {
		if NeedsAttention(r) {
			insights.NeedsAttention = append(insights.NeedsAttention, r)
		}
		if HighVolume(r) {
			insights.HighVolume = append(insights.HighVolume, r)
		}
	}
	return insights
}

// Summarize folds all department rows into the headline numbers. Departments with
// no rating or no resolution time are left out of the respective averages.
func Summarize(rows []models.DepartmentPerformance) models.PerformanceSummary {
	var (
		s                    models.PerformanceSummary
		ratingSum, timeSum   float64
		ratingRows, timeRows int
	)
	for _, r := range rows {
		s.TotalComplaints += r.TotalComplaints
		s.TotalResolved += r.ResolvedComplaints
		s.TotalPending += r.PendingComplaints
		if r.AvgRating > 0 {
			ratingSum += r.AvgRating
			ratingRows++
		}
		if r.AvgResolutionTimeHours > 0 {
			timeSum += r.AvgResolutionTimeHours
			timeRows++
		}
	}

	s.ResolutionRatePercent = RatePercent(models.DepartmentPerformance{
		TotalComplaints:    s.TotalComplaints,
		ResolvedComplaints: s.TotalResolved,
	})
	if ratingRows > 0 {
		s.AvgRating = RoundTenth(ratingSum / float64(ratingRows))
	}
	if timeRows > 0 {
		s.AvgResolutionTimeHours = RoundTenth(timeSum / float64(timeRows))
	}
	return s
}
