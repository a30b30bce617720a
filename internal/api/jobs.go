package api

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vidvoice/vidvoice/internal/pipeline"
)

const (
	jobRunning   = "running"
	jobCompleted = "completed"
	jobFailed    = "failed"
	jobCancelled = "cancelled"
)

// Job tracks one background pipeline run for the shell. The pipeline
// goroutine writes progress into it; handlers read snapshots while polling.
type Job struct {
	ID        string
	VideoName string

	mu       sync.Mutex
	cancel   context.CancelFunc
	status   string
	errMsg   string
	progress pipeline.Progress
	result   *pipeline.Result
}

// JobView is an immutable snapshot safe to hand to a template.
type JobView struct {
	ID        string
	VideoName string
	Status    string
	Error     string
	Stage     string
	Message   string
	Done      int
	Total     int
	RunID     string
}

func (j *Job) SetProgress(p pipeline.Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = p
}

func (j *Job) Finish(result *pipeline.Result, err error, cancelled bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case cancelled:
		j.status = jobCancelled
	case err != nil:
		j.status = jobFailed
		j.errMsg = err.Error()
	default:
		j.status = jobCompleted
		j.result = result
	}
}

// Cancel requests the run stop once the in-flight API call returns.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *Job) Snapshot() JobView {
	j.mu.Lock()
	defer j.mu.Unlock()
	view := JobView{
		ID:        j.ID,
		VideoName: j.VideoName,
		Status:    j.status,
		Error:     j.errMsg,
		Stage:     j.progress.Stage,
		Message:   j.progress.Message,
		Done:      j.progress.Done,
		Total:     j.progress.Total,
	}
	if j.result != nil && j.result.Run != nil {
		view.RunID = j.result.Run.ID
	}
	return view
}

type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]*Job)}
}

func (t *JobTracker) New(videoName string, cancel context.CancelFunc) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		VideoName: videoName,
		cancel:    cancel,
		status:    jobRunning,
	}
	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()
	return job
}

func (t *JobTracker) Get(id string) (*Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	return job, ok
}
