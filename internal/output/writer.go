package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vidvoice/vidvoice/internal/timing"
)

// WriteError reports an unwritable output path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write output %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer emits the two run artifacts: <base>_narration.txt and
// <base>_timing.json. Writes are all-or-nothing, a failure removes whatever
// was already written so a failed run leaves no output files behind.
type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Write(base, narration string, entries []timing.Entry) (narrationPath, timingPath string, err error) {
	narrationPath = filepath.Join(w.dir, base+"_narration.txt")
	timingPath = filepath.Join(w.dir, base+"_timing.json")

	if err := os.WriteFile(narrationPath, []byte(narration), 0644); err != nil {
		return "", "", &WriteError{Path: narrationPath, Err: err}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		os.Remove(narrationPath)
		return "", "", &WriteError{Path: timingPath, Err: err}
	}
	if err := os.WriteFile(timingPath, data, 0644); err != nil {
		os.Remove(narrationPath)
		return "", "", &WriteError{Path: timingPath, Err: err}
	}

	return narrationPath, timingPath, nil
}
