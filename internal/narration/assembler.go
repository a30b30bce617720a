package narration

import (
	"strings"
)

// Assemble joins per-frame descriptions into one TTS-ready narration string.
// Each description is cleaned of markdown artifacts and the pieces are joined
// as sentences. Every non-empty description contributes one piece; callers
// that want static shots collapsed run Smooth first.
func Assemble(descriptions []string) string {
	var pieces []string

	for _, desc := range descriptions {
		cleaned := Clean(desc)
		if cleaned == "" {
			continue
		}
		pieces = append(pieces, ensureTerminated(cleaned))
	}

	return strings.Join(pieces, " ")
}

// Smooth drops descriptions that are near-identical to the previous kept one,
// so a static shot doesn't narrate the same sentence twice. Only adjacent
// repeats collapse; a scene recurring later in the video survives.
func Smooth(descriptions []string) []string {
	var out []string
	var prev string

	for _, desc := range descriptions {
		cleaned := Clean(desc)
		if cleaned == "" {
			continue
		}
		if prev != "" && nearIdentical(prev, cleaned) {
			continue
		}
		out = append(out, desc)
		prev = cleaned
	}

	return out
}

// Clean strips residual formatting markup from a model response: code fences,
// emphasis markers, headings, list bullets, and collapsed whitespace. The
// result is plain prose safe to hand to a TTS engine.
func Clean(s string) string {
	var lines []string
	inFence := false

	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		trimmed = strings.TrimLeft(trimmed, "#")
		trimmed = strings.TrimSpace(trimmed)

		for _, bullet := range []string{"- ", "* ", "+ "} {
			if strings.HasPrefix(trimmed, bullet) {
				trimmed = strings.TrimSpace(trimmed[len(bullet):])
				break
			}
		}

		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	joined := strings.Join(lines, " ")
	joined = strings.ReplaceAll(joined, "**", "")
	joined = strings.ReplaceAll(joined, "__", "")
	joined = strings.ReplaceAll(joined, "`", "")

	return strings.Join(strings.Fields(joined), " ")
}

func ensureTerminated(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// nearIdentical reports whether two cleaned descriptions say essentially the
// same thing. Comparison is word-set overlap on lowercased tokens.
func nearIdentical(a, b string) bool {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return a == b
	}

	common := 0
	for w := range wordsA {
		if wordsB[w] {
			common++
		}
	}
	union := len(wordsA) + len(wordsB) - common

	return float64(common)/float64(union) >= 0.9
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[strings.Trim(w, ".,!?;:\"'()")] = true
	}
	delete(set, "")
	return set
}
