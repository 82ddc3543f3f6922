// Package score derives diagnostic signals from a finished turn. Signals
// describe how far the raw LLM answer was from the catalog; they never
// change which discs are returned.
package score

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/findmindisc/internal/model"
)

// Scorer generates signals for a turn
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Assess is Scorer.Assess on a zero Scorer
func Assess(rec *model.Recommendation) []model.Signal {
	return NewScorer().Assess(rec)
}

// Assess returns the signals that apply to rec, in a fixed order.
// A clean turn yields no signals.
func (s *Scorer) Assess(rec *model.Recommendation) []model.Signal {
	if rec == nil {
		return nil
	}

	var signals []model.Signal
	for _, sig := range []*model.Signal{
		s.hallucinatedNumbers(rec),
		s.manufacturerFix(rec),
		s.constraintViolation(rec),
		s.unresolvedReference(rec),
		s.noCandidates(rec),
		s.skippedFragments(rec),
	} {
		if sig != nil {
			signals = append(signals, *sig)
		}
	}
	return signals
}

// hallucinatedNumbers reports flight numbers the LLM got wrong
func (s *Scorer) hallucinatedNumbers(rec *model.Recommendation) *model.Signal {
	byDisc := make(map[string][]string)
	count := 0
	for _, c := range rec.Corrections {
		if c.Field == model.FieldManufacturer {
			continue
		}
		byDisc[c.Disc] = append(byDisc[c.Disc], c.Field)
		count++
	}
	if count == 0 {
		return nil
	}

	discs := sortedKeys(byDisc)

	// One slip is a warning; wrong numbers on several discs mean the
	// answer as a whole cannot be trusted
	severity := model.SeverityWarning
	if len(discs) > 1 {
		severity = model.SeverityCritical
	}

	return &model.Signal{
		Type:        model.SignalHallucinatedNumbers,
		Severity:    severity,
		Description: fmt.Sprintf("Corrected %d flight number(s) on %s", count, strings.Join(discs, ", ")),
		Data: map[string]interface{}{
			"corrections": count,
			"discs":       discs,
			"fields":      byDisc,
		},
	}
}

func (s *Scorer) manufacturerFix(rec *model.Recommendation) *model.Signal {
	var fixes []string
	for _, c := range rec.Corrections {
		if c.Field == model.FieldManufacturer {
			fixes = append(fixes, fmt.Sprintf("%s: %s -> %s", c.Disc, c.Original, c.Corrected))
		}
	}
	if len(fixes) == 0 {
		return nil
	}

	return &model.Signal{
		Type:        model.SignalManufacturerFix,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Corrected %d manufacturer name(s)", len(fixes)),
		Data:        map[string]interface{}{"fixes": fixes},
	}
}

func (s *Scorer) constraintViolation(rec *model.Recommendation) *model.Signal {
	if len(rec.Rejected) == 0 {
		return nil
	}

	names := make([]string, 0, len(rec.Rejected))
	reasons := make(map[string]string, len(rec.Rejected))
	for _, r := range rec.Rejected {
		names = append(names, r.Name)
		reasons[r.Name] = r.Reason
	}

	data := map[string]interface{}{
		"rejected": names,
		"reasons":  reasons,
	}
	if r := rec.Intent.SpeedRange; r != nil {
		data["speed_range"] = fmt.Sprintf("%d-%d", r.Low, r.High)
	}
	if rec.Intent.CategoryHint != "" {
		data["category"] = string(rec.Intent.CategoryHint)
	}

	severity := model.SeverityWarning
	if len(rec.Discs) == 0 {
		severity = model.SeverityCritical
	}

	return &model.Signal{
		Type:        model.SignalConstraintViolation,
		Severity:    severity,
		Description: fmt.Sprintf("LLM recommended %d disc(s) outside the requested constraints", len(names)),
		Data:        data,
	}
}

func (s *Scorer) unresolvedReference(rec *model.Recommendation) *model.Signal {
	if len(rec.Unresolved) == 0 {
		return nil
	}
	return &model.Signal{
		Type:        model.SignalUnresolvedReference,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d recommended name(s) not in the catalog", len(rec.Unresolved)),
		Data:        map[string]interface{}{"names": rec.Unresolved},
	}
}

func (s *Scorer) noCandidates(rec *model.Recommendation) *model.Signal {
	if len(rec.Discs) > 0 {
		return nil
	}
	return &model.Signal{
		Type:        model.SignalNoCandidates,
		Severity:    model.SeverityCritical,
		Description: "No recommended disc survived filtering",
		Data: map[string]interface{}{
			"rejected":   len(rec.Rejected),
			"unresolved": len(rec.Unresolved),
		},
	}
}

func (s *Scorer) skippedFragments(rec *model.Recommendation) *model.Signal {
	if len(rec.Skipped) == 0 {
		return nil
	}
	reasons := make([]string, 0, len(rec.Skipped))
	for _, sk := range rec.Skipped {
		reasons = append(reasons, fmt.Sprintf("%s: %s", sk.Disc, sk.Reason))
	}
	return &model.Signal{
		Type:        model.SignalSkippedFragment,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d ambiguous flight fragment(s) left unchanged", len(rec.Skipped)),
		Data:        map[string]interface{}{"fragments": reasons},
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
