package video

import "fmt"

// FileReadError reports an unreadable input video: a bad path, missing file,
// or a codec ffmpeg cannot decode.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("cannot read video %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }
