package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FrameDescription is one stored per-frame description, the run-level
// analysis artifact browsable after the fact.
type FrameDescription struct {
	ID          string
	RunID       string
	FrameNumber int
	Timestamp   float64
	Description string
}

type DescriptionRepo struct {
	db *DB
}

func NewDescriptionRepo(db *DB) *DescriptionRepo {
	return &DescriptionRepo{db: db}
}

func (r *DescriptionRepo) InsertBatch(ctx context.Context, runID string, descriptions []FrameDescription) error {
	if len(descriptions) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO frame_descriptions (
			id, run_id, frame_number, timestamp_seconds, description
		) VALUES (?, ?, ?, ?, ?)`

	for _, d := range descriptions {
		if _, err := tx.ExecContext(ctx, query,
			uuid.New().String(), runID, d.FrameNumber, d.Timestamp, d.Description); err != nil {
			return fmt.Errorf("failed to insert description %d: %w", d.FrameNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit descriptions: %w", err)
	}
	return nil
}

func (r *DescriptionRepo) ListByRunID(ctx context.Context, runID string) ([]FrameDescription, error) {
	query := `
		SELECT id, run_id, frame_number, timestamp_seconds, description
		FROM frame_descriptions
		WHERE run_id = ?
		ORDER BY frame_number`

	rows, err := r.db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query descriptions: %w", err)
	}
	defer rows.Close()

	var out []FrameDescription
	for rows.Next() {
		var d FrameDescription
		if err := rows.Scan(&d.ID, &d.RunID, &d.FrameNumber, &d.Timestamp, &d.Description); err != nil {
			return nil, fmt.Errorf("failed to scan description: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
