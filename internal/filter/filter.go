// Package filter enforces the hard constraints of a query on candidate discs.
package filter

import (
	"fmt"

	"github.com/ppiankov/findmindisc/internal/model"
)

// Rejection reasons
const (
	ReasonSpeed    = "speed_out_of_range"
	ReasonCategory = "category_mismatch"
)

// Filter returns the candidates that satisfy the intent, in input order.
// The input is never modified and an empty result is valid.
func Filter(candidates []model.DiscRecord, intent model.QueryIntent, th model.Thresholds) []model.DiscRecord {
	kept, _ := Partition(candidates, intent, th)
	return kept
}

// Partition is Filter that also explains every dropped disc
func Partition(candidates []model.DiscRecord, intent model.QueryIntent, th model.Thresholds) ([]model.DiscRecord, []model.Rejection) {
	kept := make([]model.DiscRecord, 0, len(candidates))
	var rejected []model.Rejection

	for _, d := range candidates {
		if reason, detail := check(d, intent, th); reason != "" {
			rejected = append(rejected, model.Rejection{Name: d.Name, Reason: reason, Detail: detail})
			continue
		}
		kept = append(kept, d)
	}
	return kept, rejected
}

// Allows reports whether a single disc satisfies the intent
func Allows(d model.DiscRecord, intent model.QueryIntent, th model.Thresholds) bool {
	reason, _ := check(d, intent, th)
	return reason == ""
}

func check(d model.DiscRecord, intent model.QueryIntent, th model.Thresholds) (reason, detail string) {
	if r := intent.SpeedRange; r != nil && !r.Contains(d.Speed) {
		return ReasonSpeed, fmt.Sprintf("speed %s outside %d-%d", model.FormatNumber(d.Speed), r.Low, r.High)
	}
	if intent.CategoryHint != "" {
		if got := th.Classify(d.Speed); got != intent.CategoryHint {
			return ReasonCategory, fmt.Sprintf("%s is a %s, not a %s", d.Name, got, intent.CategoryHint)
		}
	}
	return "", ""
}
