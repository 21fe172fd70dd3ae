package database

import (
	"context"
	"errors"
	"time"

	"quiet-path-router/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("entity not found")

// DataStore is the interface for data persistence
type DataStore interface {
	Close() error
	HealthCheck(ctx context.Context) error
	Reports() ReportRepository
	RoadSegments() RoadSegmentRepository
}

// ReportRepository handles user report persistence. Reports are
// time-limited: ListActive applies the per-category retention window, and
// DeleteExpired is the housekeeping sweep that removes what ListActive
// would no longer return.
type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) (*models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListActive(ctx context.Context, bounds models.BoundingBox, now time.Time) ([]models.Report, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RoadSegmentRepository handles static road attribute persistence
type RoadSegmentRepository interface {
	ListWithin(ctx context.Context, bounds models.BoundingBox) ([]models.RoadSegment, error)
	ReplaceAll(ctx context.Context, segments []models.RoadSegment) error
	Count(ctx context.Context) (int64, error)
}
