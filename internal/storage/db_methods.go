package storage

import (
	"civictriage/backend/internal/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ListFeedback returns the feedback of one complaint, newest first.
func (s *Service) ListFeedback(ctx context.Context, complaintID string) ([]models.Feedback, error) {
	if !ValidID(complaintID) {
		return nil, ErrNotFound
	}
	var feedback []models.Feedback
	err := s.DB.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at DESC").
		Find(&feedback).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for complaint %s: %w", complaintID, err)
	}
	return feedback, nil
}

func (s *Service) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	if err := s.DB.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// FeedbackRatingsByDepartment returns the overall rating of every feedback record
// attached to a complaint of the department.
func (s *Service) FeedbackRatingsByDepartment(ctx context.Context, departmentID string) ([]int, error) {
	var ratings []int
	err := s.DB.WithContext(ctx).Model(&models.Feedback{}).
		Joins("JOIN complaints ON complaints.id = feedback.complaint_id").
		Where("complaints.department_id = ?", departmentID).
		Pluck("feedback.rating", &ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for department %s: %w", departmentID, err)
	}
	return ratings, nil
}

func (s *Service) PutAttachment(ctx context.Context, attachment *models.Attachment) error {
	if err := s.DB.WithContext(ctx).Create(attachment).Error; err != nil {
		return fmt.Errorf("failed to store attachment %s: %w", attachment.Key, err)
	}
	return nil
}

func (s *Service) GetAttachment(ctx context.Context, key string) (*models.Attachment, error) {
	var attachment models.Attachment
	err := s.DB.WithContext(ctx).Where("key = ?", key).First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", key, err)
	}
	return &attachment, nil
}
