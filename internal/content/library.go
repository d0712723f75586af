// Package content holds the static curriculum: module templates, lesson
// text, step sequences, and the quiz bank, all keyed by (topic,
// difficulty). The data is an embedded YAML document; lookups never fail,
// unknown keys fall back to generic entries.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/finbridge/finlit-backend/internal/types"
	"github.com/finbridge/finlit-backend/internal/utils"
)

//go:embed library.yaml
var libraryYAML []byte

// ModuleTemplate is the planning-side seed for one module.
type ModuleTemplate struct {
	Title        string   `yaml:"title"`
	Duration     string   `yaml:"duration"`
	ContentAreas []string `yaml:"content_areas"`
}

// Lesson is the content-side text for one module.
type Lesson struct {
	Lesson      string   `yaml:"lesson"`
	KeyConcepts []string `yaml:"key_concepts"`
	Example     string   `yaml:"example"`
}

type Step struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type QuizQuestion struct {
	Question string   `yaml:"question" json:"question"`
	Options  []string `yaml:"options" json:"options"`
	Correct  string   `yaml:"correct" json:"correct"`
}

type library struct {
	Templates map[types.Topic]map[types.KnowledgeLevel]ModuleTemplate  `yaml:"templates"`
	Lessons   map[types.Topic]map[types.KnowledgeLevel]Lesson          `yaml:"lessons"`
	Steps     map[types.Topic][]Step                                   `yaml:"steps"`
	Quizzes   map[types.Topic]map[types.KnowledgeLevel][]QuizQuestion  `yaml:"quizzes"`
}

var lib library

func init() {
	if err := yaml.Unmarshal(libraryYAML, &lib); err != nil {
		panic(fmt.Sprintf("content: embedded library is malformed: %v", err))
	}
}

// TemplateFor returns the module template for (topic, difficulty), or a
// generic placeholder so path building is total over its inputs.
func TemplateFor(topic types.Topic, difficulty types.KnowledgeLevel) ModuleTemplate {
	if tpl, ok := lib.Templates[topic][difficulty]; ok {
		return tpl
	}
	return ModuleTemplate{
		Title:        fmt.Sprintf("%s - %s", utils.TitleWords(string(topic)), utils.TitleWords(string(difficulty))),
		Duration:     "1 hour",
		ContentAreas: []string{"Custom content for this topic"},
	}
}

func LessonFor(topic types.Topic, difficulty types.KnowledgeLevel) Lesson {
	if lesson, ok := lib.Lessons[topic][difficulty]; ok {
		return lesson
	}
	return Lesson{
		Lesson:      fmt.Sprintf("Content for %s at %s level", utils.TitleWords(string(topic)), difficulty),
		KeyConcepts: []string{"Concept 1", "Concept 2", "Concept 3"},
		Example:     "Example content would go here.",
	}
}

// StepsFor returns the five-step lesson sequence for a topic.
func StepsFor(topic types.Topic) []Step {
	if steps, ok := lib.Steps[topic]; ok && len(steps) > 0 {
		return steps
	}
	fallback := make([]Step, 5)
	for i := range fallback {
		fallback[i] = Step{
			Title:   fmt.Sprintf("Step %d", i+1),
			Content: fmt.Sprintf("Content for step %d of %s", i+1, topic),
		}
	}
	return fallback
}

func QuizFor(topic types.Topic, difficulty types.KnowledgeLevel) []QuizQuestion {
	if questions, ok := lib.Quizzes[topic][difficulty]; ok && len(questions) > 0 {
		return questions
	}
	return []QuizQuestion{{
		Question: fmt.Sprintf("Sample question for %s", topic),
		Options:  []string{"Option A", "Option B", "Option C", "Option D"},
		Correct:  "A",
	}}
}

// ActivitiesFor customizes a module's activity list by learning style.
func ActivitiesFor(style types.LearningStyle) []string {
	switch style {
	case types.StyleVisual:
		return []string{"Interactive charts and graphs", "Video explanations", "Infographic summaries"}
	case types.StyleHandsOn:
		return []string{"Practice exercises", "Mock portfolio building", "Interactive simulations"}
	default:
		return []string{"Detailed reading materials", "Case studies", "Analysis worksheets"}
	}
}

// RiskFocusFor is the one-line risk note attached to planned modules.
func RiskFocusFor(risk types.RiskTolerance) string {
	switch risk {
	case types.RiskConservative:
		return "Focus on low-risk, stable investment options"
	case types.RiskAggressive:
		return "Include higher-risk, higher-reward strategies"
	default:
		return "Balanced approach with moderate risk strategies"
	}
}

// StyleNoteFor is the lesson-body study note per learning style.
func StyleNoteFor(style types.LearningStyle) string {
	switch style {
	case types.StyleVisual:
		return "Visual Learning Notes:\n- Use charts and graphs to track your progress\n- Create visual representations of portfolio allocation\n- Draw timeline diagrams for your financial goals"
	case types.StyleHandsOn:
		return "Hands-On Activities:\n- Use online calculators to practice concepts\n- Set up practice portfolios with paper trading\n- Create spreadsheets to track your own finances"
	default:
		return "Analytical Deep Dive:\n- Study the mathematical relationships behind concepts\n- Analyze case studies and historical examples\n- Break down complex strategies into logical steps"
	}
}

// RiskNoteFor is the lesson-body approach note per risk tolerance.
func RiskNoteFor(risk types.RiskTolerance) string {
	switch risk {
	case types.RiskConservative:
		return "Conservative Approach:\n- Focus on capital preservation strategies\n- Emphasize stable, predictable investments\n- Consider lower-risk examples and scenarios"
	case types.RiskAggressive:
		return "Growth-Oriented Approach:\n- Explore higher-growth potential strategies\n- Consider more volatile investment options\n- Focus on long-term wealth building"
	default:
		return "Balanced Approach:\n- Mix conservative and growth strategies\n- Diversify across risk levels\n- Balance stability with growth potential"
	}
}
