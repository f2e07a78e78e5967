// Package stats computes the dashboard summary and department performance metrics.
//
// Every call reads the current store state; nothing is cached between calls, so
// repeated calls against an unchanged store return identical results.
package stats

import (
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/models"
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source is the read-only part of the store the engine needs.
type Source interface {
	CountComplaints(ctx context.Context, filter models.ComplaintFilter) (int64, error)
	ResolutionSample(ctx context.Context, departmentID string, limit int) ([]models.ResolutionSpan, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	FeedbackRatingsByDepartment(ctx context.Context, departmentID string) ([]int, error)
}

type Engine struct {
	Source Source
}

func NewEngine(s Source) *Engine {
	return &Engine{Source: s}
}

// Dashboard issues the five counts and the resolution sample concurrently and
// assembles them once all have returned. The first failure fails the whole call.
func (e *Engine) Dashboard(ctx context.Context, now time.Time) (models.DashboardStats, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	open := models.ComplaintFilter{}.WithStatuses(models.OpenStatuses...)
	resolvedToday := models.ComplaintFilter{}.
		WithStatuses(models.DoneStatuses...).
		WithResolvedSince(midnight)

	var (
		out    models.DashboardStats
		sample []models.ResolutionSpan
	)
	g, gctx := errgroup.WithContext(ctx)
	e.count(g, gctx, &out.TotalComplaints, models.ComplaintFilter{})
	e.count(g, gctx, &out.CriticalComplaints, open.WithPriority(models.PriorityCritical))
	e.count(g, gctx, &out.HighPriorityComplaints, open.WithPriority(models.PriorityHigh))
	e.count(g, gctx, &out.ResolvedToday, resolvedToday)
	e.count(g, gctx, &out.PendingComplaints, open)
	g.Go(func() error {
		var err error
		sample, err = e.Source.ResolutionSample(gctx, "", config.DashboardResolutionSample)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}

	out.AvgResolutionTime = AverageHours(sample)
	return out, nil
}

// DepartmentPerformance returns one row per department in catalog order.
func (e *Engine) DepartmentPerformance(ctx context.Context) ([]models.DepartmentPerformance, error) {
	depts, err := e.Source.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.DepartmentPerformance, 0, len(depts))
	for _, d := range depts {
		row, err := e.departmentRow(ctx, d)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (e *Engine) departmentRow(ctx context.Context, d models.Department) (models.DepartmentPerformance, error) {
	row := models.DepartmentPerformance{DepartmentID: d.ID, DepartmentName: d.Name}
	scoped := models.ComplaintFilter{}.WithDepartment(d.ID)

	var (
		sample  []models.ResolutionSpan
		ratings []int
	)
	g, gctx := errgroup.WithContext(ctx)
	e.count(g, gctx, &row.TotalComplaints, scoped)
	e.count(g, gctx, &row.ResolvedComplaints, scoped.WithStatuses(models.DoneStatuses...))
	e.count(g, gctx, &row.PendingComplaints, scoped.WithStatuses(models.OpenStatuses...))
	g.Go(func() error {
		var err error
		sample, err = e.Source.ResolutionSample(gctx, d.ID, config.DepartmentResolutionSample)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = e.Source.FeedbackRatingsByDepartment(gctx, d.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DepartmentPerformance{}, err
	}

	row.AvgResolutionTimeHours = AverageHours(sample)
	row.AvgRating = AverageRating(ratings)
	return row, nil
}

// Report builds the full performance page payload.
func (e *Engine) Report(ctx context.Context) (models.PerformanceReport, error) {
	rows, err := e.DepartmentPerformance(ctx)
	if err != nil {
		return models.PerformanceReport{}, err
	}

	graded := make([]models.GradedPerformance, 0, len(rows))
	for _, r := range rows {
		graded = append(graded, GradeRow(r))
	}
	return models.PerformanceReport{
		Departments: graded,
		Insights:    BuildInsights(rows),
		Summary:     Summarize(rows),
	}, nil
}

func (e *Engine) count(g *errgroup.Group, ctx context.Context, dst *int64, filter models.ComplaintFilter) {
	g.Go(func() error {
		n, err := e.Source.CountComplaints(ctx, filter)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	})
}

// AverageHours is the mean resolution time of the sample in hours, rounded to one
// decimal. Timestamps are compared at millisecond precision. An empty sample is 0.
func AverageHours(sample []models.ResolutionSpan) float64 {
	if len(sample) == 0 {
		return 0
	}
	var totalMs float64
	for _, s := range sample {
		totalMs += float64(s.ResolvedAt.UnixMilli() - s.CreatedAt.UnixMilli())
	}
	return RoundTenth(totalMs / float64(len(sample)) / (1000 * 60 * 60))
}

// AverageRating is the mean rating rounded to one decimal, or 0 without ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return RoundTenth(float64(sum) / float64(len(ratings)))
}

// RoundTenth rounds to one decimal with halves rounded up.
func RoundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
