package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"quiet-path-router/internal/models"
	"quiet-path-router/internal/scoring"
	"quiet-path-router/internal/sqlite"
)

// importsegments replaces the road-segment table with the contents of a
// JSON export. The input is an array of segments in the API wire format;
// segments without a precomputed length get one derived from their
// geometry.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	dbPath := flag.String("db", sqlite.DefaultDBFileName, "path to the SQLite database file")
	inputPath := flag.String("file", "", "path to the road segment JSON file (required)")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required -file flag")
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var segments []models.RoadSegment
	if err := json.Unmarshal(data, &segments); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}

	skipped := 0
	valid := segments[:0]
	for _, seg := range segments {
		if len(seg.Geometry) < 2 {
			skipped++
			continue
		}
		if seg.DistanceMeters == 0 {
			seg.DistanceMeters = geometryLength(seg.Geometry)
		}
		valid = append(valid, seg)
	}
	if skipped > 0 {
		log.Printf("Skipped %d segments with fewer than 2 geometry points", skipped)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := store.RoadSegments().ReplaceAll(ctx, valid); err != nil {
		return fmt.Errorf("failed to import segments: %w", err)
	}

	count, err := store.RoadSegments().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count segments: %w", err)
	}

	log.Printf("Imported %d road segments into %s", count, *dbPath)
	return nil
}

func geometryLength(points []models.Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += scoring.DistanceMeters(points[i-1], points[i])
	}
	return total
}
