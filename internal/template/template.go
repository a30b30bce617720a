package template

// Template is a named prompt configuration guiding the descriptive style of a
// run. The analysis prompt is sent with every frame; the narration prompt
// steers the optional polish pass. Custom prompts override the defaults when
// set. A template is immutable for the duration of a run.
type Template struct {
	ID          string
	Name        string
	Description string

	DefaultAnalysisPrompt  string
	DefaultNarrationPrompt string

	CustomAnalysisPrompt  string
	CustomNarrationPrompt string
}

// AnalysisPrompt returns the active per-frame prompt.
func (t *Template) AnalysisPrompt() string {
	if t.CustomAnalysisPrompt != "" {
		return t.CustomAnalysisPrompt
	}
	return t.DefaultAnalysisPrompt
}

// NarrationPrompt returns the active narration style prompt.
func (t *Template) NarrationPrompt() string {
	if t.CustomNarrationPrompt != "" {
		return t.CustomNarrationPrompt
	}
	return t.DefaultNarrationPrompt
}

func (t *Template) IsCustomized() bool {
	return t.CustomAnalysisPrompt != "" || t.CustomNarrationPrompt != ""
}

func (t *Template) ResetToDefaults() {
	t.CustomAnalysisPrompt = ""
	t.CustomNarrationPrompt = ""
}
