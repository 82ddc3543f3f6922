package model

import "time"

// Recommendation is the complete output of one conversational turn
type Recommendation struct {
	TurnID    string      `json:"turn_id"`    // ULID, sortable by creation time
	Query     string      `json:"query"`      // Raw user query
	Intent    QueryIntent `json:"intent"`     // Extracted constraints
	CreatedAt time.Time   `json:"created_at"` // When the turn started

	RawAnswer   string            `json:"raw_answer"`            // LLM answer before post-processing
	Answer      string            `json:"answer"`                // Corrected and pruned answer
	Corrections []Correction      `json:"corrections,omitempty"` // Every rewritten value
	Skipped     []SkippedFragment `json:"skipped,omitempty"`

	Discs      []RecommendedDisc `json:"discs"`                // Survivors of the constraint filter
	Rejected   []Rejection       `json:"rejected,omitempty"`   // Dropped by the constraint filter
	Unresolved []string          `json:"unresolved,omitempty"` // Names not in the catalog

	Signals []Signal `json:"signals,omitempty"` // Diagnostics, never affect the disc list

	Provider string `json:"provider,omitempty"` // openai, anthropic, ollama, gemini
	Model    string `json:"model,omitempty"`
	Cached   bool   `json:"cached,omitempty"` // Answer served from cache
}

// RecommendedDisc is a catalog-backed disc with its simulated flights
type RecommendedDisc struct {
	Disc      DiscRecord `json:"disc"`
	Category  Category   `json:"category"`
	Stability Stability  `json:"stability"`
	Flights   []Flight   `json:"flights"` // One per arm speed, slow to fast
}

// Flight is one simulated trajectory with its summary
type Flight struct {
	Arm    ArmSpeed          `json:"arm"`
	Points []TrajectoryPoint `json:"points"`
	Stats  FlightStats       `json:"stats"`
}

// Rejection explains why the constraint filter dropped a disc
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`           // speed_out_of_range, category_mismatch
	Detail string `json:"detail,omitempty"` // "speed 12 outside 7-9"
}

// DiscNames returns the canonical names of the recommended discs in order
func (r *Recommendation) DiscNames() []string {
	names := make([]string, 0, len(r.Discs))
	for _, d := range r.Discs {
		names = append(names, d.Disc.Name)
	}
	return names
}

// Signal represents a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs behind the signal
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalHallucinatedNumbers SignalType = "hallucinated_numbers" // LLM got flight numbers wrong
	SignalManufacturerFix     SignalType = "manufacturer_fix"     // LLM got the maker wrong
	SignalConstraintViolation SignalType = "constraint_violation" // LLM ignored the requested range
	SignalUnresolvedReference SignalType = "unresolved_reference" // LLM named a disc we don't know
	SignalNoCandidates        SignalType = "no_candidates"        // Nothing survived filtering
	SignalSkippedFragment     SignalType = "skipped_fragment"     // Ambiguous flight data left alone
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
