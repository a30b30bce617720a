package timing

import "fmt"

// Entry maps one narration segment back to its source interval in the video.
type Entry struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Build pairs each description with the interval from its frame's timestamp to
// the next frame's timestamp; the last entry runs to the video duration. The
// result covers [0, duration] contiguously: entry[i].End == entry[i+1].Start.
func Build(timestamps []float64, texts []string, duration float64) ([]Entry, error) {
	if len(timestamps) != len(texts) {
		return nil, fmt.Errorf("timestamp/text count mismatch: %d vs %d", len(timestamps), len(texts))
	}
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no segments to build timing for")
	}
	if timestamps[0] != 0 {
		return nil, fmt.Errorf("first timestamp must be 0, got %f", timestamps[0])
	}

	entries := make([]Entry, len(timestamps))
	for i := range timestamps {
		end := duration
		if i+1 < len(timestamps) {
			end = timestamps[i+1]
		}
		if end <= timestamps[i] {
			return nil, fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
		entries[i] = Entry{Start: timestamps[i], End: end, Text: texts[i]}
	}

	return entries, nil
}

// Validate checks the contiguity invariant on a finished entry list.
func Validate(entries []Entry, duration float64) error {
	if len(entries) == 0 {
		return fmt.Errorf("no timing entries")
	}
	if entries[0].Start != 0 {
		return fmt.Errorf("first entry starts at %f, want 0", entries[0].Start)
	}
	for i, e := range entries {
		if e.End <= e.Start {
			return fmt.Errorf("entry %d has non-positive span [%f, %f]", i, e.Start, e.End)
		}
		if i+1 < len(entries) && e.End != entries[i+1].Start {
			return fmt.Errorf("gap between entry %d (end %f) and entry %d (start %f)",
				i, e.End, i+1, entries[i+1].Start)
		}
	}
	if last := entries[len(entries)-1].End; last != duration {
		return fmt.Errorf("last entry ends at %f, want duration %f", last, duration)
	}
	return nil
}
