package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiet-path-router/internal/database"
	"quiet-path-router/internal/models"
)

type reportRepository struct {
	store *Store
}

// retentionCutoffs returns the oldest admissible created_at (Unix epoch
// seconds) per category bucket, derived from the per-category retention
// windows.
func retentionCutoffs(now time.Time) (loud, crowded, obstruction, dark, other int64) {
	loud = now.Add(-models.ReportLoud.Retention()).Unix()
	crowded = now.Add(-models.ReportCrowded.Retention()).Unix()
	obstruction = now.Add(-models.ReportObstruction.Retention()).Unix()
	dark = now.Add(-models.ReportDark.Retention()).Unix()
	other = now.Add(-models.ReportCategoryUnknown.Retention()).Unix()
	return
}

// retentionFilter matches rows still inside their category's retention
// window. Placeholder order: loud, crowded, obstruction, dark, other.
const retentionFilter = `(
	   (category = 'loud' AND created_at > ?)
	OR (category = 'crowded' AND created_at > ?)
	OR (category = 'obstruction' AND created_at > ?)
	OR (category = 'dark' AND created_at > ?)
	OR (category NOT IN ('loud','crowded','obstruction','dark') AND created_at > ?)
)`

func (r *reportRepository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query := `INSERT INTO reports (id, lat, lng, category, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.store.db.ExecContext(ctx, query,
		report.ID, report.Location.Lat, report.Location.Lng,
		report.Category.String(), report.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	created := *report
	return &created, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT id, lat, lng, category, created_at FROM reports WHERE id = ?`

	var report models.Report
	var category string
	var createdAt int64
	err := r.store.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID, &report.Location.Lat, &report.Location.Lng, &category, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report.Category = models.ParseReportCategory(category)
	report.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &report, nil
}

func (r *reportRepository) ListActive(ctx context.Context, bounds models.BoundingBox, now time.Time) ([]models.Report, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loud, crowded, obstruction, dark, other := retentionCutoffs(now)

	query := `SELECT id, lat, lng, category, created_at
	          FROM reports
	          WHERE lat BETWEEN ? AND ?
	            AND lng BETWEEN ? AND ?
	            AND ` + retentionFilter + `
	          ORDER BY created_at DESC`

	rows, err := r.store.db.QueryContext(ctx, query,
		bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng,
		loud, crowded, obstruction, dark, other,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var report models.Report
		var category string
		var createdAt int64
		if err := rows.Scan(&report.ID, &report.Location.Lat, &report.Location.Lng, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report.Category = models.ParseReportCategory(category)
		report.CreatedAt = time.Unix(createdAt, 0).UTC()
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result, err := r.store.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}

	return nil
}

func (r *reportRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	loud, crowded, obstruction, dark, other := retentionCutoffs(now)

	query := `DELETE FROM reports WHERE NOT ` + retentionFilter

	result, err := r.store.db.ExecContext(ctx, query, loud, crowded, obstruction, dark, other)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reports: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted reports: %w", err)
	}

	return affected, nil
}
