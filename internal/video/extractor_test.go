package video

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
)

func TestSampleTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		interval float64
		want     []float64
	}{
		{"even division", 15, 5, []float64{0, 5, 10}},
		{"duration excluded", 10, 5, []float64{0, 5}},
		{"remainder frame", 12, 5, []float64{0, 5, 10}},
		{"short clip", 3, 5, []float64{0}},
		{"fractional interval", 1, 0.4, []float64{0, 0.4, 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleTimestamps(tt.duration, tt.interval)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got[0] != 0 {
				t.Errorf("first sample at %f, want 0", got[0])
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("sample %d = %f, want %f", i, got[i], tt.want[i])
				}
			}
			for i := range got {
				if got[i] >= tt.duration {
					t.Errorf("sample %f at or past duration %f", got[i], tt.duration)
				}
			}
		})
	}
}

func TestParseFFmpegDuration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{
			name:   "typical stderr",
			output: "Input #0, mov,mp4\n  Duration: 00:01:30.50, start: 0.000000, bitrate: 1234 kb/s",
			want:   90.5,
		},
		{
			name:   "hours",
			output: "Duration: 01:02:03.00, start: 0",
			want:   3723,
		},
		{
			name:    "no duration line",
			output:  "some unrelated ffmpeg noise",
			wantErr: true,
		},
		{
			name:    "malformed value",
			output:  "Duration: 90.5, start: 0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFFmpegDuration(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func newStubExtractor(t *testing.T) *Extractor {
	t.Helper()
	return &Extractor{
		ffmpegPath: "/bin/false",
		tempDir:    t.TempDir(),
		frameSize:  768,
		logger:     slog.Default(),
	}
}

func TestOpenMissingFile(t *testing.T) {
	e := newStubExtractor(t)

	_, err := e.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), 5)

	var readErr *FileReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected FileReadError, got %v", err)
	}
	if readErr.Path == "" {
		t.Error("FileReadError should carry the video path")
	}
}

func TestOpenInvalidInterval(t *testing.T) {
	e := newStubExtractor(t)

	for _, interval := range []float64{0, -1} {
		if _, err := e.Open(context.Background(), "video.mp4", interval); err == nil {
			t.Errorf("expected error for interval %f", interval)
		}
	}
}
