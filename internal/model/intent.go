package model

// QueryIntent is the structured request extracted from one user query.
// Zero value means "no constraints".
type QueryIntent struct {
	SpeedRange         *SpeedRange `json:"speed_range,omitempty"`
	CategoryHint       Category    `json:"category_hint,omitempty"`
	ElaborationTargets []string    `json:"elaboration_targets,omitempty"`

	Stability      Stability   `json:"stability,omitempty"`        // Requested flight behaviour
	SkillLevel     SkillLevel  `json:"skill_level,omitempty"`      // Self-described player level
	ThrowDistanceM int         `json:"throw_distance_m,omitempty"` // "jeg kaster 70m"
	RefersToShown  bool        `json:"refers_to_shown,omitempty"`  // "fortæl mere om dem"
	Matches        []RuleMatch `json:"matches,omitempty"`          // Which extraction rules fired
}

// SpeedRange is an inclusive speed constraint with Low <= High
type SpeedRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Contains reports whether speed lies inside the range
func (r SpeedRange) Contains(speed float64) bool {
	return speed >= float64(r.Low) && speed <= float64(r.High)
}

// IsElaboration reports whether the user asked for details about specific discs
func (q QueryIntent) IsElaboration() bool {
	return len(q.ElaborationTargets) > 0 || q.RefersToShown
}

// HasConstraints reports whether the filter has anything to enforce
func (q QueryIntent) HasConstraints() bool {
	return q.SpeedRange != nil || q.CategoryHint != ""
}

// RuleMatch records a grammar rule that matched the query
type RuleMatch struct {
	Family string `json:"family"` // speed_range, category, elaboration, ...
	Rule   string `json:"rule"`   // rule name, e.g. "speed_suffix"
	Text   string `json:"text"`   // matched text
}

// SkillLevel is the player's self-described experience
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)
