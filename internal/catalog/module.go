package catalog

import (
	"fmt"
	"strings"
)

// Level grades how demanding a module is.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether the level is one of the known values.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Icon is an opaque tag the presentation layer maps to a glyph.
type Icon string

const (
	IconLock          Icon = "lock"
	IconAlertTriangle Icon = "alert-triangle"
	IconEye           Icon = "eye"
	IconWifi          Icon = "wifi"
	IconMail          Icon = "mail"
	IconFileText      Icon = "file-text"
	IconShield        Icon = "shield"
	IconSmartphone    Icon = "smartphone"
)

const defaultModuleIcon = IconShield

// ItemType enumerates the kinds of content blocks inside a section.
type ItemType string

const (
	ItemText  ItemType = "text"
	ItemImage ItemType = "image"
	ItemTip   ItemType = "tip"
)

// ContentItem is a single block of module content.
type ContentItem struct {
	Type  ItemType `json:"type" yaml:"type"`
	Value string   `json:"value" yaml:"value"`
}

// ContentSection groups content items under a heading.
type ContentSection struct {
	Title string        `json:"title" yaml:"title"`
	Items []ContentItem `json:"items" yaml:"items"`
}

// QuizOption is one selectable answer.
type QuizOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// QuizQuestion is a single multiple-choice question. CorrectAnswer must match
// exactly one option value.
type QuizQuestion struct {
	ID            string       `json:"id" yaml:"id"`
	Question      string       `json:"question" yaml:"question"`
	Options       []QuizOption `json:"options" yaml:"options"`
	CorrectAnswer string       `json:"correct_answer" yaml:"correct_answer"`
}

// Module is one unit of training content with its quiz.
type Module struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	Icon        Icon             `json:"icon,omitempty" yaml:"icon,omitempty"`
	Duration    int              `json:"duration" yaml:"duration"`
	Level       Level            `json:"level" yaml:"level"`
	Content     []ContentSection `json:"content" yaml:"content"`
	Quiz        []QuizQuestion   `json:"quiz" yaml:"quiz"`
}

// Normalized returns a trimmed copy of the module.
func (m Module) Normalized() Module {
	clone := Module{
		ID:          strings.TrimSpace(m.ID),
		Title:       strings.TrimSpace(m.Title),
		Description: strings.TrimSpace(m.Description),
		Icon:        Icon(strings.ToLower(strings.TrimSpace(string(m.Icon)))),
		Duration:    m.Duration,
		Level:       Level(strings.TrimSpace(string(m.Level))),
	}
	if clone.Icon == "" {
		clone.Icon = defaultModuleIcon
	}
	if len(m.Content) > 0 {
		clone.Content = make([]ContentSection, len(m.Content))
		for i, section := range m.Content {
			clone.Content[i] = section.normalized()
		}
	}
	if len(m.Quiz) > 0 {
		clone.Quiz = make([]QuizQuestion, len(m.Quiz))
		for i, question := range m.Quiz {
			clone.Quiz[i] = question.normalized()
		}
	}
	return clone
}

// Validate enforces the catalog invariants for a single module.
func (m Module) Validate() error {
	normalized := m.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("catalog: module id is required")
	}
	if normalized.Title == "" {
		return fmt.Errorf("catalog: module %s: title is required", normalized.ID)
	}
	if normalized.Duration < 0 {
		return fmt.Errorf("catalog: module %s: duration must be >= 0", normalized.ID)
	}
	if !normalized.Level.Valid() {
		return fmt.Errorf("catalog: module %s: unknown level %q", normalized.ID, normalized.Level)
	}
	for idx, section := range normalized.Content {
		if err := section.validate(); err != nil {
			return fmt.Errorf("catalog: module %s: content[%d]: %w", normalized.ID, idx, err)
		}
	}
	if len(normalized.Quiz) == 0 {
		return fmt.Errorf("catalog: module %s: quiz needs at least one question", normalized.ID)
	}
	seen := make(map[string]struct{}, len(normalized.Quiz))
	for idx, question := range normalized.Quiz {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("catalog: module %s: quiz[%d]: %w", normalized.ID, idx, err)
		}
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("catalog: module %s: quiz[%d]: duplicate question id %s", normalized.ID, idx, question.ID)
		}
		seen[question.ID] = struct{}{}
	}
	return nil
}

func (s ContentSection) normalized() ContentSection {
	clone := ContentSection{Title: strings.TrimSpace(s.Title)}
	if len(s.Items) > 0 {
		clone.Items = make([]ContentItem, len(s.Items))
		for i, item := range s.Items {
			clone.Items[i] = ContentItem{
				Type:  ItemType(strings.ToLower(strings.TrimSpace(string(item.Type)))),
				Value: strings.TrimSpace(item.Value),
			}
		}
	}
	return clone
}

func (s ContentSection) validate() error {
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	for idx, item := range s.Items {
		switch item.Type {
		case ItemText, ItemImage, ItemTip:
		default:
			return fmt.Errorf("items[%d]: unknown type %q", idx, item.Type)
		}
	}
	return nil
}

func (q QuizQuestion) normalized() QuizQuestion {
	clone := QuizQuestion{
		ID:            strings.TrimSpace(q.ID),
		Question:      strings.TrimSpace(q.Question),
		CorrectAnswer: strings.TrimSpace(q.CorrectAnswer),
	}
	if len(q.Options) > 0 {
		clone.Options = make([]QuizOption, len(q.Options))
		for i, opt := range q.Options {
			clone.Options[i] = QuizOption{
				Label: strings.TrimSpace(opt.Label),
				Value: strings.TrimSpace(opt.Value),
			}
		}
	}
	return clone
}

// Validate checks that the question has an id, at least two options, and
// exactly one option carrying the correct answer.
func (q QuizQuestion) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s: at least two options are required", q.ID)
	}
	matches := 0
	values := make(map[string]struct{}, len(q.Options))
	for idx, opt := range q.Options {
		if opt.Value == "" {
			return fmt.Errorf("question %s: options[%d]: value is required", q.ID, idx)
		}
		if _, dup := values[opt.Value]; dup {
			return fmt.Errorf("question %s: options[%d]: duplicate value %s", q.ID, idx, opt.Value)
		}
		values[opt.Value] = struct{}{}
		if opt.Value == q.CorrectAnswer {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("question %s: correct answer %q must match exactly one option", q.ID, q.CorrectAnswer)
	}
	return nil
}

// Option returns the option carrying value, if any.
func (q QuizQuestion) Option(value string) (QuizOption, bool) {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return QuizOption{}, false
}
