// Package mocks holds a testify mock of storage.Storage shared by package tests.
package mocks

import (
	"civictriage/backend/internal/models"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListDepartments(ctx context.Context) ([]models.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Department), args.Error(1)
}

func (m *MockStorage) GetDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Department), args.Error(1)
}

func (m *MockStorage) CreateDepartment(ctx context.Context, dept *models.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

func (m *MockStorage) ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockStorage) UpdateComplaint(ctx context.Context, id string, changes map[string]interface{}) (*models.Complaint, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) CountComplaints(ctx context.Context, filter models.ComplaintFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) ResolutionSample(ctx context.Context, departmentID string, limit int) ([]models.ResolutionSpan, error) {
	args := m.Called(ctx, departmentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResolutionSpan), args.Error(1)
}

func (m *MockStorage) ListMarkers(ctx context.Context, limit int) ([]models.ComplaintMarker, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComplaintMarker), args.Error(1)
}

func (m *MockStorage) ListFeedback(ctx context.Context, complaintID string) ([]models.Feedback, error) {
	args := m.Called(ctx, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *MockStorage) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *MockStorage) FeedbackRatingsByDepartment(ctx context.Context, departmentID string) ([]int, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockStorage) PutAttachment(ctx context.Context, attachment *models.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockStorage) GetAttachment(ctx context.Context, key string) (*models.Attachment, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}
