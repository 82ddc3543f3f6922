package model

// CorrectionResult is the corrected answer plus an audit log of every rewrite
type CorrectionResult struct {
	Text        string            `json:"text"`
	Corrections []Correction      `json:"corrections,omitempty"`
	Mentions    []string          `json:"mentions,omitempty"` // Canonical discs found in the text
	Skipped     []SkippedFragment `json:"skipped,omitempty"`  // Left untouched, never guessed
}

// Changed reports whether any rewrite was applied
func (r CorrectionResult) Changed() bool {
	return len(r.Corrections) > 0
}

// Correction is one value replaced in the answer text
type Correction struct {
	Disc      string `json:"disc"`
	Field     string `json:"field"` // speed, glide, turn, fade or manufacturer
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Rule      string `json:"rule"`   // Grammar rule that located the value
	Offset    int    `json:"offset"` // Byte offset in the original text
}

// SkippedFragment is text that looked like flight data but could not be parsed
type SkippedFragment struct {
	Disc   string `json:"disc"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
	Offset int    `json:"offset"`
}

// FieldManufacturer is the correction field used for manufacturer rewrites
const FieldManufacturer = "manufacturer"
