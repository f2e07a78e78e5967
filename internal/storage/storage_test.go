package storage_test

import (
	"civictriage/backend/internal/models"
	"civictriage/backend/internal/storage"
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockService(t *testing.T) (*storage.Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	// No Redis: the department catalog is read straight from the database.
	return storage.NewStorageService(db, nil), mock
}

func TestCountComplaints_OpenStatuses(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "complaints" WHERE status IN \(\$1,\$2,\$3\)`).
		WithArgs("submitted", "assigned", "in_progress").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := s.CountComplaints(context.Background(), models.ComplaintFilter{}.WithStatuses(models.OpenStatuses...))

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountComplaints_PriorityAndDepartment(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "complaints" WHERE priority IN \(\$1\) AND department_id = \$2`).
		WithArgs("critical", "dept-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	filter := models.ComplaintFilter{}.WithPriority(models.PriorityCritical).WithDepartment("dept-1")
	n, err := s.CountComplaints(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountComplaints_StoreError(t *testing.T) {
	s, mock := newMockService(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "complaints"`).WillReturnError(errors.New("connection reset"))

	_, err := s.CountComplaints(context.Background(), models.ComplaintFilter{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetComplaintByID_NotFound(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "complaints" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	c, err := s.GetComplaintByID(context.Background(), "0b7c6a52-2f1e-4d3a-9c8b-5e4f3a2b1c0d")

	assert.Nil(t, c)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMalformedIDs_AreNotFoundWithoutQuerying(t *testing.T) {
	s, mock := newMockService(t)
	ctx := context.Background()

	c, err := s.GetComplaintByID(ctx, "not-a-uuid")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	d, err := s.GetDepartmentByID(ctx, "abc")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	c, err = s.UpdateComplaint(ctx, "abc", map[string]interface{}{"status": "assigned"})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.ListFeedback(ctx, "42")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Postgres would reject these with SQLSTATE 22P02, so nothing may reach it.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidID(t *testing.T) {
	assert.True(t, storage.ValidID("0b7c6a52-2f1e-4d3a-9c8b-5e4f3a2b1c0d"))
	assert.False(t, storage.ValidID(""))
	assert.False(t, storage.ValidID("c1"))
	assert.False(t, storage.ValidID("0b7c6a52-2f1e-4d3a-9c8b"))
}

func TestListDepartments_FromDatabaseWithoutRedis(t *testing.T) {
	s, mock := newMockService(t)

	rows := sqlmock.NewRows([]string{"id", "name", "category"}).
		AddRow("d1", "Parks", "environment").
		AddRow("d2", "Roads", "infrastructure")
	mock.ExpectQuery(`SELECT \* FROM "departments" ORDER BY name`).WillReturnRows(rows)

	depts, err := s.ListDepartments(context.Background())

	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, "Parks", depts[0].Name)
	assert.Equal(t, models.CategoryInfrastructure, depts[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolutionSample_ScopedToDepartment(t *testing.T) {
	s, mock := newMockService(t)
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"created_at", "resolved_at"}).
		AddRow(created, created.Add(2*time.Hour)).
		AddRow(created, created.Add(4*time.Hour))
	mock.ExpectQuery(`SELECT created_at, resolved_at FROM "complaints" WHERE resolved_at IS NOT NULL AND department_id = \$1 ORDER BY resolved_at DESC LIMIT`).
		WillReturnRows(rows)

	spans, err := s.ResolutionSample(context.Background(), "dept-1", 50)

	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.InDelta(t, 2.0, spans[0].Hours(), 1e-9)
	assert.InDelta(t, 4.0, spans[1].Hours(), 1e-9)
}

func TestFeedbackRatingsByDepartment(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`FROM "feedback" JOIN complaints ON complaints.id = feedback.complaint_id WHERE complaints.department_id = \$1`).
		WithArgs("dept-1").
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(4).AddRow(5))

	ratings, err := s.FeedbackRatingsByDepartment(context.Background(), "dept-1")

	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, ratings)
}

func TestUpdateComplaint_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectExec(`UPDATE "complaints" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	c, err := s.UpdateComplaint(context.Background(), "0b7c6a52-2f1e-4d3a-9c8b-5e4f3a2b1c0d", map[string]interface{}{"status": "assigned"})

	assert.Nil(t, c)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListMarkers_SkipsRowsWithoutCoordinates(t *testing.T) {
	s, mock := newMockService(t)

	rows := sqlmock.NewRows([]string{"id", "title", "priority", "status", "location_lat", "location_lng", "category"}).
		AddRow("c1", "Fallen tree", "high", "submitted", 50.45, 30.52, "environment").
		AddRow("c2", "Broken light", "medium", "assigned", nil, 30.5, "infrastructure")
	mock.ExpectQuery(`SELECT id, title, priority, status, location_lat, location_lng, category FROM "complaints"`).
		WillReturnRows(rows)

	markers, err := s.ListMarkers(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, "c1", markers[0].ID)
	assert.InDelta(t, 50.45, markers[0].Lat, 1e-9)
}

func TestGetAttachment_NotFound(t *testing.T) {
	s, mock := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "attachments" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}))

	a, err := s.GetAttachment(context.Background(), "nope.jpg")

	assert.Nil(t, a)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
