package timing

import "testing"

func TestBuild(t *testing.T) {
	t.Run("entries are contiguous from zero to duration", func(t *testing.T) {
		timestamps := []float64{0, 5, 10, 15}
		texts := []string{"one", "two", "three", "four"}

		entries, err := Build(timestamps, texts, 18.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(entries))
		}
		if entries[0].Start != 0 {
			t.Errorf("first entry starts at %f, want 0", entries[0].Start)
		}
		for i := 0; i < len(entries)-1; i++ {
			if entries[i].End != entries[i+1].Start {
				t.Errorf("entry %d end %f != entry %d start %f",
					i, entries[i].End, i+1, entries[i+1].Start)
			}
		}
		if entries[3].End != 18.5 {
			t.Errorf("last entry ends at %f, want 18.5", entries[3].End)
		}
		if err := Validate(entries, 18.5); err != nil {
			t.Errorf("Validate rejected valid entries: %v", err)
		}
	})

	t.Run("single frame spans whole video", func(t *testing.T) {
		entries, err := Build([]float64{0}, []string{"only"}, 3.2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entries[0].Start != 0 || entries[0].End != 3.2 {
			t.Errorf("got [%f, %f], want [0, 3.2]", entries[0].Start, entries[0].End)
		}
	})

	tests := []struct {
		name       string
		timestamps []float64
		texts      []string
		duration   float64
	}{
		{"count mismatch", []float64{0, 5}, []string{"one"}, 10},
		{"empty", nil, nil, 10},
		{"nonzero first timestamp", []float64{1, 5}, []string{"one", "two"}, 10},
		{"not increasing", []float64{0, 5, 5}, []string{"a", "b", "c"}, 10},
		{"duration before last frame", []float64{0, 5}, []string{"a", "b"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.timestamps, tt.texts, tt.duration); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Entry
		duration float64
		wantErr  bool
	}{
		{
			name: "valid",
			entries: []Entry{
				{Start: 0, End: 2, Text: "a"},
				{Start: 2, End: 4, Text: "b"},
			},
			duration: 4,
		},
		{
			name: "gap between entries",
			entries: []Entry{
				{Start: 0, End: 2, Text: "a"},
				{Start: 3, End: 4, Text: "b"},
			},
			duration: 4,
			wantErr:  true,
		},
		{
			name: "does not start at zero",
			entries: []Entry{
				{Start: 1, End: 4, Text: "a"},
			},
			duration: 4,
			wantErr:  true,
		},
		{
			name: "does not cover duration",
			entries: []Entry{
				{Start: 0, End: 3, Text: "a"},
			},
			duration: 4,
			wantErr:  true,
		},
		{
			name:     "empty",
			entries:  nil,
			duration: 4,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.entries, tt.duration)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
