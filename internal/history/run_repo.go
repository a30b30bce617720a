package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

type Run struct {
	ID            string
	VideoName     string
	TemplateID    string
	Interval      float64
	FrameCount    int
	Status        string
	Error         string
	NarrationPath string
	TimingPath    string
	CreatedAt     time.Time
}

func NewRun(videoName, templateID string, interval float64) *Run {
	return &Run{
		ID:         uuid.New().String(),
		VideoName:  videoName,
		TemplateID: templateID,
		Interval:   interval,
		Status:     StatusRunning,
		CreatedAt:  time.Now(),
	}
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Insert(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (
			id, video_name, template_id, interval_seconds, frame_count,
			status, error, narration_path, timing_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn.ExecContext(ctx, query,
		run.ID, run.VideoName, run.TemplateID, run.Interval, run.FrameCount,
		run.Status, run.Error, run.NarrationPath, run.TimingPath, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Complete marks a run finished and records its artifacts.
func (r *RunRepo) Complete(ctx context.Context, id string, frameCount int, narrationPath, timingPath string) error {
	query := `
		UPDATE runs SET status = ?, frame_count = ?, narration_path = ?, timing_path = ?
		WHERE id = ?`

	_, err := r.db.conn.ExecContext(ctx, query,
		StatusCompleted, frameCount, narrationPath, timingPath, id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

func (r *RunRepo) Fail(ctx context.Context, id, status, message string) error {
	query := `UPDATE runs SET status = ?, error = ? WHERE id = ?`

	_, err := r.db.conn.ExecContext(ctx, query, status, message, id)
	if err != nil {
		return fmt.Errorf("failed to mark run %s: %w", status, err)
	}
	return nil
}

func (r *RunRepo) GetByID(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, video_name, template_id, interval_seconds, frame_count,
			   status, error, narration_path, timing_path, created_at
		FROM runs WHERE id = ?`

	run := &Run{}
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.VideoName, &run.TemplateID, &run.Interval, &run.FrameCount,
		&run.Status, &run.Error, &run.NarrationPath, &run.TimingPath, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (r *RunRepo) List(ctx context.Context) ([]Run, error) {
	query := `
		SELECT id, video_name, template_id, interval_seconds, frame_count,
			   status, error, narration_path, timing_path, created_at
		FROM runs ORDER BY created_at DESC`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.VideoName, &run.TemplateID, &run.Interval, &run.FrameCount,
			&run.Status, &run.Error, &run.NarrationPath, &run.TimingPath, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
