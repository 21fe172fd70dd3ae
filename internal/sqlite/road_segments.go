package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"quiet-path-router/internal/models"
)

type roadSegmentRepository struct {
	store *Store
}

func (r *roadSegmentRepository) ListWithin(ctx context.Context, bounds models.BoundingBox) ([]models.RoadSegment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	// Box-overlap test against the precomputed per-segment bounds
	query := `SELECT id, road_class, lit, school_zone, nightlife_zone, market_zone, geometry, distance_meters
	          FROM road_segments
	          WHERE max_lat >= ? AND min_lat <= ?
	            AND max_lng >= ? AND min_lng <= ?
	          ORDER BY id`

	rows, err := r.store.db.QueryContext(ctx, query,
		bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query road segments: %w", err)
	}
	defer rows.Close()

	var segments []models.RoadSegment
	for rows.Next() {
		var seg models.RoadSegment
		var class, lit, geometry string
		if err := rows.Scan(&seg.ID, &class, &lit, &seg.SchoolZone, &seg.NightlifeZone, &seg.MarketZone, &geometry, &seg.DistanceMeters); err != nil {
			return nil, fmt.Errorf("failed to scan road segment: %w", err)
		}
		seg.Class = models.ParseRoadClass(class)
		seg.Lit = models.ParseLitStatus(lit)
		if err := json.Unmarshal([]byte(geometry), &seg.Geometry); err != nil {
			return nil, fmt.Errorf("failed to decode segment geometry: %w", err)
		}
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating road segments: %w", err)
	}

	return segments, nil
}

func (r *roadSegmentRepository) ReplaceAll(ctx context.Context, segments []models.RoadSegment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM road_segments`); err != nil {
		return fmt.Errorf("failed to clear road segments: %w", err)
	}

	insert := `INSERT INTO road_segments
	           (road_class, lit, school_zone, nightlife_zone, market_zone, geometry, distance_meters, min_lat, min_lng, max_lat, max_lng)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		geometry, err := json.Marshal(seg.Geometry)
		if err != nil {
			return fmt.Errorf("failed to encode segment geometry: %w", err)
		}
		bounds := models.BoundsOf(seg.Geometry)
		_, err = stmt.ExecContext(ctx,
			seg.Class.String(), seg.Lit.String(),
			seg.SchoolZone, seg.NightlifeZone, seg.MarketZone,
			string(geometry), seg.DistanceMeters,
			bounds.MinLat, bounds.MinLng, bounds.MaxLat, bounds.MaxLng,
		)
		if err != nil {
			return fmt.Errorf("failed to insert road segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit road segments: %w", err)
	}

	return nil
}

func (r *roadSegmentRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM road_segments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count road segments: %w", err)
	}
	return count, nil
}
