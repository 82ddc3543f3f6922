package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/findmindisc/internal/model"
)

// Description is a catalog-backed answer about specific discs
type Description struct {
	Text       string             `json:"text"`
	Discs      []model.DiscRecord `json:"discs"`
	Unresolved []string           `json:"unresolved,omitempty"`
}

type describeText struct {
	intro, outro            string
	title                   string // name, manufacturer
	typ, flight, turn, fade string
	recommended             string
	categories              map[model.Category]string

	veryUnderstable, understable, neutral, stableTurn string
	hardFade, mediumFade, softFade                    string
	beginner, strongArm, most                         string
}

var describeDA = describeText{
	intro:       "Selvfølgelig! Her er mere information om de valgte discs:",
	outro:       "Vil du se en sammenligning af hvordan de flyver (flight chart)?",
	title:       "### **%s** af %s",
	typ:         "- **Type:** %s",
	flight:      "- **Flight:** %s",
	turn:        "- **Turn:** %s",
	fade:        "- **Fade:** %s",
	recommended: "- **Anbefales til:** %s",
	categories: map[model.Category]string{
		model.CategoryPutter:         "Putter",
		model.CategoryMidrange:       "Midrange",
		model.CategoryFairwayDriver:  "Fairway driver",
		model.CategoryDistanceDriver: "Distance driver",
	},
	veryUnderstable: "Meget understabil - drejer meget til højre for højrehåndede",
	understable:     "Understabil - mild drejning til højre",
	neutral:         "Neutral - flyver lige",
	stableTurn:      "Stabil - modstår turn",
	hardFade:        "Hård fade - kraftig venstredrejning til sidst",
	mediumFade:      "Medium fade",
	softFade:        "Blød fade - lander lige",
	beginner:        "God for begyndere og øvede",
	strongArm:       "Kræver god armhastighed (erfarne spillere)",
	most:            "Passer til de fleste spillere",
}

var describeEN = describeText{
	intro:       "Of course! Here is more information about the selected discs:",
	outro:       "Would you like to compare how they fly (flight chart)?",
	title:       "### **%s** by %s",
	typ:         "- **Type:** %s",
	flight:      "- **Flight:** %s",
	turn:        "- **Turn:** %s",
	fade:        "- **Fade:** %s",
	recommended: "- **Recommended for:** %s",
	categories: map[model.Category]string{
		model.CategoryPutter:         "Putter",
		model.CategoryMidrange:       "Midrange",
		model.CategoryFairwayDriver:  "Fairway driver",
		model.CategoryDistanceDriver: "Distance driver",
	},
	veryUnderstable: "Very understable - turns hard right for right-handers",
	understable:     "Understable - mild turn to the right",
	neutral:         "Neutral - flies straight",
	stableTurn:      "Stable - resists turn",
	hardFade:        "Hard fade - strong finish to the left",
	mediumFade:      "Medium fade",
	softFade:        "Soft fade - lands straight",
	beginner:        "Good for beginners and intermediate players",
	strongArm:       "Needs a strong arm (experienced players)",
	most:            "Suits most players",
}

func (t describeText) turnText(turn float64) string {
	switch {
	case turn <= -3:
		return t.veryUnderstable
	case turn <= -1:
		return t.understable
	case turn <= 0:
		return t.neutral
	default:
		return t.stableTurn
	}
}

func (t describeText) fadeText(fade float64) string {
	switch {
	case fade >= 3:
		return t.hardFade
	case fade >= 2:
		return t.mediumFade
	default:
		return t.softFade
	}
}

func (t describeText) skillText(d model.DiscRecord) string {
	switch {
	case d.Speed <= 7 && d.Turn <= -1:
		return t.beginner
	case d.Speed >= 11:
		return t.strongArm
	default:
		return t.most
	}
}

// Describe answers a "tell me more" question straight from the catalog,
// without calling the LLM. Unknown names are reported and skipped.
func (p *Pipeline) Describe(names []string, language string) Description {
	txt := describeDA
	if strings.EqualFold(language, "en") {
		txt = describeEN
	}

	var desc Description
	seen := make(map[string]bool)
	for _, name := range names {
		d, err := p.catalog.Lookup(name)
		if err != nil {
			desc.Unresolved = append(desc.Unresolved, strings.TrimSpace(name))
			continue
		}
		if !seen[d.Name] {
			seen[d.Name] = true
			desc.Discs = append(desc.Discs, d)
		}
	}
	if len(desc.Discs) == 0 {
		return desc
	}

	lines := []string{txt.intro, ""}
	for _, d := range desc.Discs {
		lines = append(lines,
			fmt.Sprintf(txt.title, d.Name, d.Manufacturer),
			fmt.Sprintf(txt.typ, txt.categories[p.catalog.Category(d)]),
			fmt.Sprintf(txt.flight, d.FlightNumbers()),
			fmt.Sprintf(txt.turn, txt.turnText(d.Turn)),
			fmt.Sprintf(txt.fade, txt.fadeText(d.Fade)),
			fmt.Sprintf(txt.recommended, txt.skillText(d)),
			"",
		)
	}
	lines = append(lines, txt.outro)
	desc.Text = strings.Join(lines, "\n")
	return desc
}
