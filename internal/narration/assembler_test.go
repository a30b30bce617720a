package narration

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text unchanged",
			input:    "A bright kitchen with marble counters.",
			expected: "A bright kitchen with marble counters.",
		},
		{
			name:     "strips bold markers",
			input:    "A **bright** kitchen with __marble__ counters.",
			expected: "A bright kitchen with marble counters.",
		},
		{
			name:     "strips headings and bullets",
			input:    "## Scene\n- A sofa\n* A lamp\n+ A rug",
			expected: "Scene A sofa A lamp A rug",
		},
		{
			name:     "drops code fences",
			input:    "The room.\n```json\n{\"x\": 1}\n```\nIs bright.",
			expected: "The room. Is bright.",
		},
		{
			name:     "collapses whitespace",
			input:    "A   room\n\n\nwith   space",
			expected: "A room with space",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	t.Run("echo descriptions join with terminal punctuation", func(t *testing.T) {
		fixed := "A living room with a gray sofa"
		descriptions := []string{fixed, "A sunny balcony", "A narrow hallway"}

		got := Assemble(descriptions)
		want := "A living room with a gray sofa. A sunny balcony. A narrow hallway."
		if got != want {
			t.Errorf("Assemble() = %q, want %q", got, want)
		}
	})

	t.Run("keeps existing punctuation", func(t *testing.T) {
		got := Assemble([]string{"Is this the kitchen?", "Yes!"})
		want := "Is this the kitchen? Yes!"
		if got != want {
			t.Errorf("Assemble() = %q, want %q", got, want)
		}
	})

	t.Run("empty descriptions produce empty narration", func(t *testing.T) {
		if got := Assemble(nil); got != "" {
			t.Errorf("Assemble(nil) = %q, want empty", got)
		}
		if got := Assemble([]string{"", "  "}); got != "" {
			t.Errorf("Assemble(blank) = %q, want empty", got)
		}
	})

	t.Run("repeated description appears once per frame", func(t *testing.T) {
		fixed := "A still frame from the video"
		got := Assemble([]string{fixed, fixed, fixed, fixed})
		want := strings.TrimSuffix(strings.Repeat(fixed+". ", 4), " ")
		if got != want {
			t.Errorf("Assemble() = %q, want %q", got, want)
		}
	})
}

func TestSmooth(t *testing.T) {
	t.Run("collapses adjacent identical descriptions", func(t *testing.T) {
		got := Assemble(Smooth([]string{
			"A parked red car.",
			"A parked red car.",
			"A dog crossing the street.",
		}))
		if strings.Count(got, "red car") != 1 {
			t.Errorf("adjacent duplicate not collapsed: %q", got)
		}
		if !strings.Contains(got, "dog crossing") {
			t.Errorf("distinct description lost: %q", got)
		}
	})

	t.Run("keeps non-adjacent repeats", func(t *testing.T) {
		got := Assemble(Smooth([]string{
			"A parked red car.",
			"A dog crossing the street.",
			"A parked red car.",
		}))
		if strings.Count(got, "red car") != 2 {
			t.Errorf("non-adjacent repeat should survive: %q", got)
		}
	})

	t.Run("drops blank descriptions", func(t *testing.T) {
		got := Smooth([]string{"", "A gate.", "  "})
		if len(got) != 1 || got[0] != "A gate." {
			t.Errorf("Smooth() = %v, want just the gate", got)
		}
	})
}

func TestNearIdentical(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "a red car parked outside", "a red car parked outside", true},
		{"reworded", "a red car parked outside", "outside a red car parked", true},
		{"different", "a red car parked outside", "a crowd gathers at the entrance", false},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nearIdentical(tt.a, tt.b); got != tt.want {
				t.Errorf("nearIdentical(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
