package types

// Plan represents the billing plan of a subject. Premium subjects are never
// metered; free subjects are gated by the generation quota.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// IsValid checks if the plan is a known value
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanPremium:
		return true
	default:
		return false
	}
}

// Metered returns true when generations by this plan consume quota
func (p Plan) Metered() bool {
	return p != PlanPremium
}

// String returns the string representation of the plan
func (p Plan) String() string {
	return string(p)
}

// Subject is the caller of the pipeline. Authentication happens upstream;
// the pipeline only needs a stable ID and the plan.
type Subject struct {
	ID   SubjectID
	Plan Plan
}
