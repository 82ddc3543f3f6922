package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/findmindisc/internal/filter"
	"github.com/ppiankov/findmindisc/internal/model"
)

// popularDiscs are offered before the rest of the catalog when they fit the query
var popularDiscs = []string{
	"Destroyer", "Wraith", "Thunderbird", "Firebird",
	"Escape", "Leopard", "Roadrunner", "Valkyrie", "Volt", "Tesla",
	"Buzzz", "Roc3", "Mako3", "Hex", "Compass",
	"Aviar", "Luna", "Judge", "P2", "Envy",
	"Photon", "Wave", "Insanity",
}

// beginnerMaxSpeed caps the discs offered to beginners when no range was asked for
const beginnerMaxSpeed = 9

// contextText holds the fixed phrases of the context block in one language
type contextText struct {
	speedReq     string // low, high
	categoryReq  string // category, low, high
	skill        string
	distance     string
	elaboration  string
	listHeader   string
	emptyList    string
	skillLabels  map[model.SkillLevel]string
	stabilityReq string
	stability    map[model.Stability]string
}

var contextDA = contextText{
	speedReq:    "SPEED-KRAV: Anbefal KUN discs med speed %s-%s. Anbefal IKKE discs udenfor dette interval!",
	categoryReq: "VIGTIGT: Brugeren bad om %ss (speed %s-%s). Anbefal KUN discs i dette interval!",
	skill:       "Brugerens niveau: %s",
	distance:    "Estimeret kastelængde: ca. %dm",
	elaboration: "Brugeren vil vide mere om: %s",
	listHeader:  "Discs fra databasen (VÆLG KUN FRA DENNE LISTE):",
	emptyList:   "Ingen relevante discs fundet",
	skillLabels: map[model.SkillLevel]string{
		model.SkillBeginner:     "Nybegynder",
		model.SkillIntermediate: "Øvet",
		model.SkillAdvanced:     "Erfaren",
	},
	stabilityReq: "Brugeren ønsker %s discs",
	stability: map[model.Stability]string{
		model.StabilityUnderstable: "understabile",
		model.StabilityStable:      "stabile",
		model.StabilityOverstable:  "overstabile",
	},
}

var contextEN = contextText{
	speedReq:    "SPEED REQUIREMENT: Recommend ONLY discs with speed %s-%s. Do NOT recommend discs outside this range!",
	categoryReq: "IMPORTANT: The user asked for %ss (speed %s-%s). Recommend ONLY discs in this range!",
	skill:       "Player level: %s",
	distance:    "Estimated throwing distance: about %dm",
	elaboration: "The user wants to know more about: %s",
	listHeader:  "Discs from the database (CHOOSE ONLY FROM THIS LIST):",
	emptyList:   "No relevant discs found",
	skillLabels: map[model.SkillLevel]string{
		model.SkillBeginner:     "Beginner",
		model.SkillIntermediate: "Intermediate",
		model.SkillAdvanced:     "Advanced",
	},
	stabilityReq: "The user wants %s discs",
	stability: map[model.Stability]string{
		model.StabilityUnderstable: "understable",
		model.StabilityStable:      "stable",
		model.StabilityOverstable:  "overstable",
	},
}

func textFor(language string) contextText {
	if strings.EqualFold(language, "en") {
		return contextEN
	}
	return contextDA
}

// requestedRange is the speed interval the answer must respect, if any.
// An explicit range wins over the bounds of a category.
func requestedRange(intent model.QueryIntent, th model.Thresholds) (low, high float64, ok bool) {
	if r := intent.SpeedRange; r != nil {
		return float64(r.Low), float64(r.High), true
	}
	if intent.CategoryHint != "" {
		low, high = th.SpeedBounds(intent.CategoryHint)
		return low, high, true
	}
	return 0, 0, false
}

// contextDiscs picks the catalog discs offered to the LLM. Discs the user
// asked about come first and bypass the filter; the rest satisfy the intent,
// popular discs before the remainder of the catalog.
func (p *Pipeline) contextDiscs(intent model.QueryIntent, shown []string) []model.DiscRecord {
	limit := p.cfg.Pipeline.ContextDiscs
	if limit <= 0 {
		limit = defaultContextDiscs
	}
	th := p.catalog.Thresholds()

	seen := make(map[string]bool)
	var out []model.DiscRecord
	add := func(d model.DiscRecord) {
		if len(out) >= limit || seen[d.Name] {
			return
		}
		seen[d.Name] = true
		out = append(out, d)
	}

	for _, name := range p.focusNames(intent, shown) {
		if d, err := p.catalog.Lookup(name); err == nil {
			add(d)
		}
	}

	fits := func(d model.DiscRecord) bool {
		if !filter.Allows(d, intent, th) {
			return false
		}
		if intent.SkillLevel == model.SkillBeginner && intent.SpeedRange == nil && d.Speed > beginnerMaxSpeed {
			return false
		}
		return true
	}

	candidates := make([]model.DiscRecord, 0, len(popularDiscs)+p.catalog.Len())
	for _, name := range popularDiscs {
		if d, err := p.catalog.Lookup(name); err == nil {
			candidates = append(candidates, d)
		}
	}
	candidates = append(candidates, p.catalog.All()...)

	// Discs with the requested stability go first, order otherwise kept
	if intent.Stability != "" {
		var match, rest []model.DiscRecord
		for _, d := range candidates {
			if d.Stability() == intent.Stability {
				match = append(match, d)
			} else {
				rest = append(rest, d)
			}
		}
		candidates = append(match, rest...)
	}

	for _, d := range candidates {
		if fits(d) {
			add(d)
		}
	}
	return out
}

// focusNames are the discs the user is asking about directly
func (p *Pipeline) focusNames(intent model.QueryIntent, shown []string) []string {
	names := append([]string(nil), intent.ElaborationTargets...)
	if intent.RefersToShown {
		names = append(names, shown...)
	}
	return names
}

// buildContext renders the catalog context sent with the query
func (p *Pipeline) buildContext(intent model.QueryIntent, shown []string) string {
	txt := textFor(p.cfg.LLM.Language)
	th := p.catalog.Thresholds()

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	if low, high, ok := requestedRange(intent, th); ok {
		line(txt.speedReq, model.FormatNumber(low), model.FormatNumber(high))
		if intent.CategoryHint != "" {
			line(txt.categoryReq, intent.CategoryHint, model.FormatNumber(low), model.FormatNumber(high))
		}
	}
	if label, ok := txt.skillLabels[intent.SkillLevel]; ok {
		line(txt.skill, label)
	}
	if intent.ThrowDistanceM > 0 {
		line(txt.distance, intent.ThrowDistanceM)
	}
	if word, ok := txt.stability[intent.Stability]; ok {
		line(txt.stabilityReq, word)
	}
	if focus := p.focusNames(intent, shown); len(focus) > 0 {
		line(txt.elaboration, strings.Join(focus, ", "))
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}

	line("%s", txt.listHeader)
	discs := p.contextDiscs(intent, shown)
	if len(discs) == 0 {
		line("%s", txt.emptyList)
	}
	for _, d := range discs {
		line("- %s (%s): %s", d.Name, d.Manufacturer, d.FlightNumbers())
	}
	return b.String()
}
