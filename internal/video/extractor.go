package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Frame is a single still image sampled from the video. The JPEG bytes are
// discarded by callers once the frame has been described.
type Frame struct {
	Index     int
	Timestamp float64
	JPEG      []byte
}

// Extractor samples still frames from a video file using ffmpeg.
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	frameSize   int
	logger      *slog.Logger
}

func NewExtractor(frameSize int, logger *slog.Logger) (*Extractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	// ffprobe is optional, duration falls back to parsing ffmpeg output.
	ffprobePath, _ := exec.LookPath("ffprobe")

	tempDir := filepath.Join(os.TempDir(), "vidvoice-frames")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	if frameSize <= 0 {
		frameSize = 768
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("frame extractor ready", "ffmpeg", ffmpegPath, "temp_dir", tempDir)

	return &Extractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
		frameSize:   frameSize,
		logger:      logger,
	}, nil
}

// Open probes the video and returns a lazy sequence of frames sampled every
// interval seconds, starting at t=0. Frames are extracted one at a time as the
// caller advances the sequence, so long videos never hold more than one frame
// in memory.
func (e *Extractor) Open(ctx context.Context, videoPath string, interval float64) (*FrameSeq, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid sampling interval: %f", interval)
	}

	if _, err := os.Stat(videoPath); err != nil {
		return nil, &FileReadError{Path: videoPath, Err: err}
	}

	duration, err := e.probeDuration(ctx, videoPath)
	if err != nil {
		return nil, &FileReadError{Path: videoPath, Err: err}
	}
	if duration <= 0 {
		return nil, &FileReadError{Path: videoPath, Err: fmt.Errorf("invalid video duration: %f", duration)}
	}

	timestamps := SampleTimestamps(duration, interval)
	e.logger.Debug("video opened", "path", videoPath, "duration", duration, "frames", len(timestamps))

	return &FrameSeq{
		extractor:  e,
		videoPath:  videoPath,
		duration:   duration,
		timestamps: timestamps,
	}, nil
}

// SampleTimestamps returns the sampling points for a video: 0, interval,
// 2*interval, ... strictly less than duration.
func SampleTimestamps(duration, interval float64) []float64 {
	var ts []float64
	for t := 0.0; t < duration; t += interval {
		ts = append(ts, t)
	}
	return ts
}

// FrameSeq yields frames in timestamp order.
type FrameSeq struct {
	extractor  *Extractor
	videoPath  string
	duration   float64
	timestamps []float64
	next       int
}

func (s *FrameSeq) Duration() float64 { return s.duration }

func (s *FrameSeq) Len() int { return len(s.timestamps) }

// Next extracts and returns the next frame, or io.EOF once the sequence is
// exhausted. A decode failure mid-sequence is a FileReadError, the codec is
// unsupported or the file is truncated.
func (s *FrameSeq) Next(ctx context.Context) (*Frame, error) {
	if s.next >= len(s.timestamps) {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := s.next
	timestamp := s.timestamps[index]
	s.next++

	data, err := s.extractor.extractFrame(ctx, s.videoPath, timestamp)
	if err != nil {
		return nil, &FileReadError{Path: s.videoPath, Err: err}
	}

	return &Frame{Index: index, Timestamp: timestamp, JPEG: data}, nil
}

func (e *Extractor) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	if e.ffprobePath != "" {
		cmd := exec.CommandContext(ctx, e.ffprobePath,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			videoPath)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout

		if err := cmd.Run(); err == nil {
			durationStr := strings.TrimSpace(stdout.String())
			if duration, err := strconv.ParseFloat(durationStr, 64); err == nil && duration > 0 {
				return duration, nil
			}
		}
	}

	// Fall back to scraping the Duration line from ffmpeg stderr.
	cmd := exec.CommandContext(ctx, e.ffmpegPath, "-i", videoPath, "-f", "null", "-")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	return parseFFmpegDuration(stderr.String())
}

func parseFFmpegDuration(output string) (float64, error) {
	const prefix = "Duration: "
	start := strings.Index(output, prefix)
	if start == -1 {
		return 0, fmt.Errorf("duration not found in ffmpeg output")
	}
	start += len(prefix)

	end := strings.Index(output[start:], ",")
	if end == -1 {
		return 0, fmt.Errorf("invalid duration format")
	}

	parts := strings.Split(output[start:start+end], ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s", output[start:start+end])
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}

	return hours*3600 + minutes*60 + seconds, nil
}

func (e *Extractor) extractFrame(ctx context.Context, videoPath string, timestamp float64) ([]byte, error) {
	tempFile := filepath.Join(e.tempDir, fmt.Sprintf("frame_%.3f.jpg", timestamp))
	defer os.Remove(tempFile)

	size := e.frameSize
	args := []string{
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", size, size),
		"-q:v", "2",
		"-f", "mjpeg",
		"-y",
		tempFile,
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Debug("ffmpeg frame extraction failed", "timestamp", timestamp, "stderr", stderr.String())
		return nil, fmt.Errorf("failed to extract frame at %.3f: %w", timestamp, err)
	}

	data, err := os.ReadFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted frame: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame at %.3f", timestamp)
	}

	return data, nil
}

// Cleanup removes the extractor's temp directory.
func (e *Extractor) Cleanup() error {
	return os.RemoveAll(e.tempDir)
}
