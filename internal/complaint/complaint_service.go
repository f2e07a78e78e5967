// Package complaint provides the core logic for handling citizen complaints:
// intake with scoring and routing, status changes, listing and feedback.
package complaint

import (
	"civictriage/backend/internal/analysis"
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/lifecycle"
	"civictriage/backend/internal/metrics"
	"civictriage/backend/internal/models"
	"civictriage/backend/internal/routing"
	"civictriage/backend/internal/storage"
	"context"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/lib/pq"
)

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	Resolver *routing.Resolver
	Policy   lifecycle.Policy
	Now      func() time.Time
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, policy lifecycle.Policy) *Service {
	return &Service{
		Storage:  s,
		Resolver: routing.NewResolver(s),
		Policy:   policy,
		Now:      time.Now,
	}
}

// Submit validates a new complaint, scores it, routes it and stores it as submitted.
func (s *Service) Submit(ctx context.Context, in models.ComplaintInput) (*models.Complaint, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	score, tier := analysis.Assess(in)
	dept, err := s.Resolver.Resolve(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	c := &models.Complaint{
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		Priority:        tier,
		Status:          models.StatusSubmitted,
		LocationAddress: in.LocationAddress,
		LocationLat:     in.LocationLat,
		LocationLng:     in.LocationLng,
		CitizenName:     in.CitizenName,
		CitizenEmail:    in.CitizenEmail,
		CitizenPhone:    in.CitizenPhone,
		ImageURLs:       append(pq.StringArray{}, in.ImageURLs...),
		PriorityScore:   score,
		UrgencyFactor:   1,
		SeverityFactor:  1,
		ImpactFactor:    1,
	}
	if dept != nil {
		c.DepartmentID = &dept.ID
	}

	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		return nil, err
	}
	c.Department = dept

	metrics.ComplaintsSubmittedTotal.WithLabelValues(string(tier)).Inc()
	fields := log.Fields{"id": c.ID, "category": c.Category, "score": score, "priority": tier}
	if dept == nil {
		metrics.UnroutedComplaintsTotal.WithLabelValues(string(in.Category)).Inc()
		log.WithFields(fields).Warn("no department handles category, complaint left unassigned")
	} else {
		fields["department"] = dept.Name
		log.WithFields(fields).Info("complaint submitted")
	}
	return c, nil
}

// ValidateInput checks the required fields of a new complaint.
func ValidateInput(in models.ComplaintInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return models.NewValidationError("title", "error.title_required", "title is required")
	case strings.TrimSpace(in.Description) == "":
		return models.NewValidationError("description", "error.description_required", "description is required")
	case in.Category == "":
		return models.NewValidationError("category", "error.category_required", "category is required")
	case !in.Category.Valid():
		return models.NewValidationError("category", "error.category_invalid", "unknown category")
	case strings.TrimSpace(in.LocationAddress) == "":
		return models.NewValidationError("location_address", "error.location_required", "location is required")
	}

	if (in.LocationLat == nil) != (in.LocationLng == nil) {
		return models.NewValidationError("location_lat", "error.coordinates_invalid", "latitude and longitude go together")
	}
	if in.LocationLat != nil && (*in.LocationLat < -90 || *in.LocationLat > 90 || *in.LocationLng < -180 || *in.LocationLng > 180) {
		return models.NewValidationError("location_lat", "error.coordinates_invalid", "coordinates out of range")
	}
	return nil
}

// SetStatus moves a complaint to a new status and returns the stored record.
func (s *Service) SetStatus(ctx context.Context, id string, status models.Status) (*models.Complaint, error) {
	current, err := s.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := lifecycle.Plan(current, status, s.Now(), s.Policy)
	if err != nil {
		return nil, err
	}

	updated, err := s.Storage.UpdateComplaint(ctx, id, t.Changes())
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(t.Target())).Inc()
	log.WithFields(log.Fields{"id": id, "from": current.Status, "to": t.Target()}).Info("complaint status changed")
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Complaint, error) {
	return s.Storage.GetComplaintByID(ctx, id)
}

// List returns complaints for the filter with the limit bounded to [1, 500],
// defaulting to 50.
func (s *Service) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = config.DefaultListLimit
	case filter.Limit > config.MaxListLimit:
		filter.Limit = config.MaxListLimit
	}
	return s.Storage.ListComplaints(ctx, filter)
}

// SubmitFeedback stores a citizen rating for a resolved or closed complaint.
func (s *Service) SubmitFeedback(ctx context.Context, complaintID string, in models.FeedbackInput) (*models.Feedback, error) {
	if err := ValidateFeedback(in); err != nil {
		return nil, err
	}

	c, err := s.Storage.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !c.Status.IsDone() {
		return nil, models.NewValidationError("", "error.feedback_not_allowed",
			"feedback can be left once the complaint is resolved")
	}

	fb := &models.Feedback{
		ComplaintID:             complaintID,
		Rating:                  in.Rating,
		ResponseTimeRating:      in.ResponseTimeRating,
		ResolutionQualityRating: in.ResolutionQualityRating,
		Comment:                 in.Comment,
	}
	if err := s.Storage.CreateFeedback(ctx, fb); err != nil {
		return nil, err
	}

	metrics.FeedbackTotal.Inc()
	return fb, nil
}

// ValidateFeedback requires the overall rating and keeps every rating within 1..5.
func ValidateFeedback(in models.FeedbackInput) error {
	if in.Rating == 0 {
		return models.NewValidationError("rating", "error.rating_required", "overall rating is required")
	}
	ratings := []struct {
		field string
		value *int
	}{
		{"rating", &in.Rating},
		{"response_time_rating", in.ResponseTimeRating},
		{"resolution_quality_rating", in.ResolutionQualityRating},
	}
	for _, r := range ratings {
		if r.value != nil && (*r.value < config.MinRating || *r.value > config.MaxRating) {
			return models.NewValidationError(r.field, "error.rating_range", "ratings go from 1 to 5")
		}
	}
	return nil
}

func (s *Service) ListFeedback(ctx context.Context, complaintID string) ([]models.Feedback, error) {
	return s.Storage.ListFeedback(ctx, complaintID)
}
