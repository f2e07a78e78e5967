package storage

import (
	"civictriage/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record looked up by id does not exist.
var ErrNotFound = errors.New("record not found")

// ValidID reports whether id can name a stored record. Ids are UUID columns, so
// anything else can never match and is treated as not found.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const (
	departmentCatalogKey      = "departments:catalog"
	defaultDepartmentCacheTTL = 5 * time.Minute
)

type Storage interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartmentByID(ctx context.Context, id string) (*models.Department, error)
	CreateDepartment(ctx context.Context, dept *models.Department) error

	ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	UpdateComplaint(ctx context.Context, id string, changes map[string]interface{}) (*models.Complaint, error)
	CountComplaints(ctx context.Context, filter models.ComplaintFilter) (int64, error)
	ResolutionSample(ctx context.Context, departmentID string, limit int) ([]models.ResolutionSpan, error)
	ListMarkers(ctx context.Context, limit int) ([]models.ComplaintMarker, error)

	ListFeedback(ctx context.Context, complaintID string) ([]models.Feedback, error)
	CreateFeedback(ctx context.Context, feedback *models.Feedback) error
	FeedbackRatingsByDepartment(ctx context.Context, departmentID string) ([]int, error)

	PutAttachment(ctx context.Context, attachment *models.Attachment) error
	GetAttachment(ctx context.Context, key string) (*models.Attachment, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client

	// CatalogTTL bounds how long the department snapshot is served from Redis.
	CatalogTTL time.Duration
}

// NewStorageService Constructor. rdb may be nil, in which case the department
// catalog is always read from PostgreSQL.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:         db,
		Redis:      rdb,
		CatalogTTL: defaultDepartmentCacheTTL,
	}
}

// Migrate creates or updates the tables for every stored model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Department{},
		&models.Complaint{},
		&models.Feedback{},
		&models.Attachment{},
	)
}

// ListDepartments returns the department catalog ordered by name. A snapshot is kept
// in Redis and refreshed from PostgreSQL once it expires or is invalidated.
func (s *Service) ListDepartments(ctx context.Context) ([]models.Department, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, departmentCatalogKey).Bytes()
		switch {
		case err == nil:
			var depts []models.Department
			if err := json.Unmarshal(cached, &depts); err == nil {
				return depts, nil
			}
			log.WithError(err).Warn("discarding unreadable department snapshot")
		case !errors.Is(err, redis.Nil):
			log.WithError(err).Warn("department snapshot unavailable, reading from database")
		}
	}

	var depts []models.Department
	if err := s.DB.WithContext(ctx).Order("name").Find(&depts).Error; err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(depts); err == nil {
			if err := s.Redis.Set(ctx, departmentCatalogKey, payload, s.CatalogTTL).Err(); err != nil {
				log.WithError(err).Warn("failed to store department snapshot")
			}
		}
	}
	return depts, nil
}

func (s *Service) GetDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	var dept models.Department
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&dept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department %s: %w", id, err)
	}
	return &dept, nil
}

// CreateDepartment stores a department and drops the cached catalog snapshot.
func (s *Service) CreateDepartment(ctx context.Context, dept *models.Department) error {
	if err := s.DB.WithContext(ctx).Create(dept).Error; err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, departmentCatalogKey).Err(); err != nil {
			log.WithError(err).Warn("failed to invalidate department snapshot")
		}
	}
	return nil
}

// ListComplaints returns complaints matching the filter, highest score first and
// newest first within a score.
func (s *Service) ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	var complaints []models.Complaint
	q := applyFilter(s.DB.WithContext(ctx).Model(&models.Complaint{}), filter).
		Preload("Department").
		Order("priority_score DESC").
		Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	var complaint models.Complaint
	err := s.DB.WithContext(ctx).Preload("Department").Where("id = ?", id).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint %s: %w", id, err)
	}
	return &complaint, nil
}

// CreateComplaint inserts the complaint; id and server timestamps are filled in on
// the passed struct.
func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit("Department").Create(complaint).Error; err != nil {
		log.WithError(err).WithField("category", complaint.Category).Error("failed to save complaint")
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// UpdateComplaint applies a partial update and returns the stored record.
func (s *Service) UpdateComplaint(ctx context.Context, id string, changes map[string]interface{}) (*models.Complaint, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	result := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update complaint %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetComplaintByID(ctx, id)
}

func (s *Service) CountComplaints(ctx context.Context, filter models.ComplaintFilter) (int64, error) {
	var n int64
	if err := applyFilter(s.DB.WithContext(ctx).Model(&models.Complaint{}), filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	return n, nil
}

// ResolutionSample returns up to limit creation/resolution pairs of the most recently
// resolved complaints, optionally scoped to one department.
func (s *Service) ResolutionSample(ctx context.Context, departmentID string, limit int) ([]models.ResolutionSpan, error) {
	var spans []models.ResolutionSpan
	q := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("created_at, resolved_at").
		Where("resolved_at IS NOT NULL")
	if departmentID != "" {
		q = q.Where("department_id = ?", departmentID)
	}
	if err := q.Order("resolved_at DESC").Limit(limit).Scan(&spans).Error; err != nil {
		return nil, fmt.Errorf("failed to sample resolution times: %w", err)
	}
	return spans, nil
}

type markerRow struct {
	ID          string
	Title       string
	Priority    models.Priority
	Status      models.Status
	LocationLat *float64
	LocationLng *float64
	Category    models.Category
}

// ListMarkers returns complaints that carry both coordinates.
func (s *Service) ListMarkers(ctx context.Context, limit int) ([]models.ComplaintMarker, error) {
	var rows []markerRow
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("id, title, priority, status, location_lat, location_lng, category").
		Where("location_lat IS NOT NULL AND location_lng IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}

	markers := make([]models.ComplaintMarker, 0, len(rows))
	for _, r := range rows {
		if r.LocationLat == nil || r.LocationLng == nil {
			continue
		}
		markers = append(markers, models.ComplaintMarker{
			ID:       r.ID,
			Title:    r.Title,
			Priority: r.Priority,
			Status:   r.Status,
			Lat:      *r.LocationLat,
			Lng:      *r.LocationLng,
			Category: r.Category,
		})
	}
	return markers, nil
}

func applyFilter(q *gorm.DB, f models.ComplaintFilter) *gorm.DB {
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", toStrings(f.Statuses))
	}
	if len(f.Priorities) > 0 {
		q = q.Where("priority IN ?", toStrings(f.Priorities))
	}
	if len(f.Categories) > 0 {
		q = q.Where("category IN ?", toStrings(f.Categories))
	}
	if f.DepartmentID != "" {
		q = q.Where("department_id = ?", f.DepartmentID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}
	if f.ResolvedSince != nil {
		q = q.Where("resolved_at >= ?", *f.ResolvedSince)
	}
	return q
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
