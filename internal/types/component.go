package types

// Component identifies one of the four agent processes in handoff rows.
type Component string

const (
	ComponentAssessment Component = "assessment_agent"
	ComponentPlanning   Component = "planning_agent"
	ComponentContent    Component = "content_delivery_agent"
	ComponentProgress   Component = "progress_agent"
)

func (c Component) Valid() bool {
	switch c {
	case ComponentAssessment, ComponentPlanning, ComponentContent, ComponentProgress:
		return true
	}
	return false
}
