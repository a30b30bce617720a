package template

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Manager holds the built-in templates plus any custom prompt overrides
// persisted on disk.
type Manager struct {
	templates  map[string]*Template
	customPath string
}

type customPrompts struct {
	AnalysisPrompt  string `json:"custom_analysis_prompt,omitempty"`
	NarrationPrompt string `json:"custom_narration_prompt,omitempty"`
}

// NewManager builds the default template set and loads custom prompts from
// customPath if the file exists. A broken custom prompts file is ignored and
// the defaults are used.
func NewManager(customPath string) *Manager {
	m := &Manager{
		templates:  defaultTemplates(),
		customPath: customPath,
	}
	m.loadCustomPrompts()
	return m
}

func (m *Manager) Get(id string) (*Template, bool) {
	t, ok := m.templates[id]
	return t, ok
}

// List returns all templates ordered by ID.
func (m *Manager) List() []*Template {
	out := make([]*Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetCustomPrompts overrides a template's prompts and persists the overrides.
// Empty strings fall back to the defaults.
func (m *Manager) SetCustomPrompts(id, analysisPrompt, narrationPrompt string) error {
	t, ok := m.templates[id]
	if !ok {
		return fmt.Errorf("unknown template: %s", id)
	}
	t.CustomAnalysisPrompt = analysisPrompt
	t.CustomNarrationPrompt = narrationPrompt
	return m.saveCustomPrompts()
}

// Reset discards a template's custom prompts and persists the change.
func (m *Manager) Reset(id string) error {
	t, ok := m.templates[id]
	if !ok {
		return fmt.Errorf("unknown template: %s", id)
	}
	t.ResetToDefaults()
	return m.saveCustomPrompts()
}

func (m *Manager) saveCustomPrompts() error {
	custom := make(map[string]customPrompts)
	for id, t := range m.templates {
		if t.IsCustomized() {
			custom[id] = customPrompts{
				AnalysisPrompt:  t.CustomAnalysisPrompt,
				NarrationPrompt: t.CustomNarrationPrompt,
			}
		}
	}

	if len(custom) == 0 {
		if err := os.Remove(m.customPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove custom prompts: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(custom, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal custom prompts: %w", err)
	}
	if err := os.WriteFile(m.customPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save custom prompts: %w", err)
	}
	return nil
}

func (m *Manager) loadCustomPrompts() {
	data, err := os.ReadFile(m.customPath)
	if err != nil {
		return
	}

	var custom map[string]customPrompts
	if err := json.Unmarshal(data, &custom); err != nil {
		return
	}

	for id, prompts := range custom {
		if t, ok := m.templates[id]; ok {
			t.CustomAnalysisPrompt = prompts.AnalysisPrompt
			t.CustomNarrationPrompt = prompts.NarrationPrompt
		}
	}
}

func defaultTemplates() map[string]*Template {
	templates := []*Template{
		{
			ID:          "room-tour",
			Name:        "Room Walk-through",
			Description: "Perfect for real estate, hotel rooms, and interior tours",
			DefaultAnalysisPrompt: "Analyze this room as a veteran tour guide would see it. Focus on:\n" +
				"- Layout and practical use of space\n" +
				"- Notable features and amenities\n" +
				"- Lighting and atmosphere\n" +
				"- Quality of finishes and materials\n" +
				"Describe it clearly and directly, as if explaining to a friend.",
			DefaultNarrationPrompt: "Create a natural, flowing tour narrative connecting these room descriptions. " +
				"Use a straightforward, conversational style appropriate for a veteran narrator. " +
				"Focus on practical details and clear transitions between spaces.",
		},
		{
			ID:          "outdoor-scene",
			Name:        "Outdoor Scenes",
			Description: "Ideal for nature, landscapes, and exterior property views",
			DefaultAnalysisPrompt: "Observe this outdoor scene as an experienced guide would. Note key features like:\n" +
				"- Landscape elements and views\n" +
				"- Natural features and terrain\n" +
				"- Notable landmarks or structures\n" +
				"- Weather and lighting conditions\n" +
				"Use clear, straightforward language.",
			DefaultNarrationPrompt: "Develop a natural narrative that guides viewers through these outdoor scenes. " +
				"Use direct, clear language that connects different views and locations. " +
				"Focus on notable features and maintain a steady, comfortable pace.",
		},
		{
			ID:          "event-coverage",
			Name:        "Event Coverage",
			Description: "Great for ceremonies, gatherings, and special occasions",
			DefaultAnalysisPrompt: "Analyze this event scene focusing on:\n" +
				"- Key activities and moments\n" +
				"- People and interactions\n" +
				"- Setting and atmosphere\n" +
				"- Timeline of events\n" +
				"Describe it clearly and chronologically.",
			DefaultNarrationPrompt: "Create a chronological narrative of the event that flows naturally. " +
				"Focus on key moments and transitions. " +
				"Maintain clear timing references while keeping a conversational tone.",
		},
		{
			ID:          "product-showcase",
			Name:        "Product Showcase",
			Description: "Suited for product demonstrations and features",
			DefaultAnalysisPrompt: "Examine this product scene focusing on:\n" +
				"- Key features and functions\n" +
				"- Design elements\n" +
				"- Practical benefits\n" +
				"- Quality and craftsmanship\n" +
				"Use clear, non-marketing language.",
			DefaultNarrationPrompt: "Develop a straightforward narrative about the product's features and benefits. " +
				"Avoid marketing jargon and focus on practical information. " +
				"Create natural transitions between different aspects of the product.",
		},
	}

	out := make(map[string]*Template, len(templates))
	for _, t := range templates {
		out[t.ID] = t
	}
	return out
}
