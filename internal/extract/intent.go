// Package extract reads structure out of free text: the user's intent from a
// query and the recommended discs from a Markdown answer.
package extract

import (
	"math"
	"strconv"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/model"
)

// MaxElaborationTargets caps how many discs one follow-up can ask about
const MaxElaborationTargets = 4

// IntentExtractor turns a query into a QueryIntent using ordered rule families
type IntentExtractor struct {
	catalog     *catalog.Catalog
	speed       []SpeedRule
	category    []CategoryRule
	elaboration []Rule
	pronoun     []Rule
	stability   []StabilityRule
	skill       []SkillRule
	distance    []DistanceRule
}

// NewIntentExtractor creates an extractor with the default Danish and English grammar.
// The catalog validates elaboration targets; with a nil catalog none are found.
func NewIntentExtractor(c *catalog.Catalog) *IntentExtractor {
	return &IntentExtractor{
		catalog:     c,
		speed:       DefaultSpeedRules(),
		category:    DefaultCategoryRules(),
		elaboration: DefaultElaborationRules(),
		pronoun:     DefaultPronounRules(),
		stability:   DefaultStabilityRules(),
		skill:       DefaultSkillRules(),
		distance:    DefaultDistanceRules(),
	}
}

// AddSpeedRules appends rules after the defaults
func (e *IntentExtractor) AddSpeedRules(rules ...SpeedRule) {
	e.speed = append(e.speed, rules...)
}

// AddCategoryRules appends rules after the defaults
func (e *IntentExtractor) AddCategoryRules(rules ...CategoryRule) {
	e.category = append(e.category, rules...)
}

// AddElaborationRules appends rules after the defaults
func (e *IntentExtractor) AddElaborationRules(rules ...Rule) {
	e.elaboration = append(e.elaboration, rules...)
}

// Extract parses a query. A query with no recognised signal gives the zero intent.
func (e *IntentExtractor) Extract(query string) model.QueryIntent {
	var intent model.QueryIntent

	for _, r := range e.speed {
		if sr, text, ok := r.parse(query); ok {
			intent.SpeedRange = &sr
			intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilySpeedRange, Rule: r.Name, Text: text})
			break
		}
	}

	for _, r := range e.category {
		if g, _, _, ok := r.match(query); ok {
			// An explicit speed range outranks a category word that cannot hold it
			if intent.SpeedRange != nil && !e.categoryOverlaps(r.Category, *intent.SpeedRange) {
				break
			}
			intent.CategoryHint = r.Category
			intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilyCategory, Rule: r.Name, Text: g[1]})
			break
		}
	}

	e.extractElaboration(query, &intent)

	for _, r := range e.stability {
		if g, _, _, ok := r.match(query); ok {
			intent.Stability = r.Stability
			intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilyStability, Rule: r.Name, Text: g[1]})
			break
		}
	}

	for _, r := range e.skill {
		if g, _, _, ok := r.match(query); ok {
			intent.SkillLevel = r.Level
			intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilySkill, Rule: r.Name, Text: g[1]})
			break
		}
	}

	for _, r := range e.distance {
		g, _, _, ok := r.match(query)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(g[2])
		if err != nil || n <= 0 {
			continue
		}
		if r.Feet {
			n = int(math.Round(float64(n) * 0.3048))
		}
		intent.ThrowDistanceM = n
		intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilyDistance, Rule: r.Name, Text: g[1]})
		break
	}

	return intent
}

func (e *IntentExtractor) categoryOverlaps(c model.Category, sr model.SpeedRange) bool {
	th := model.DefaultThresholds()
	if e.catalog != nil {
		th = e.catalog.Thresholds()
	}
	low, high := th.SpeedBounds(c)
	return float64(sr.Low) <= high && float64(sr.High) >= low
}

// extractElaboration finds a "tell me more" trigger and the catalog discs
// named after it. Without names, a pronoun marks a reference to the discs
// shown in the previous answer.
func (e *IntentExtractor) extractElaboration(query string, intent *model.QueryIntent) {
	for _, r := range e.elaboration {
		g, _, end, ok := r.match(query)
		if !ok {
			continue
		}
		intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilyElaboration, Rule: r.Name, Text: g[1]})

		rest := query[end:]
		if e.catalog != nil {
			for _, name := range e.catalog.MentionedNames(rest) {
				if len(intent.ElaborationTargets) >= MaxElaborationTargets {
					break
				}
				intent.ElaborationTargets = append(intent.ElaborationTargets, name)
			}
		}

		if len(intent.ElaborationTargets) == 0 {
			for _, p := range e.pronoun {
				if pg, _, _, ok := p.match(rest); ok {
					intent.RefersToShown = true
					intent.Matches = append(intent.Matches, model.RuleMatch{Family: FamilyPronoun, Rule: p.Name, Text: pg[1]})
					break
				}
			}
		}
		return
	}
}
