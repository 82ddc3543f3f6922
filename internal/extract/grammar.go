package extract

import (
	"regexp"
	"strconv"

	"github.com/ppiankov/findmindisc/internal/model"
)

// Rule families. Each family is an ordered list; the first rule that
// matches wins, so more specific phrasings go first.
const (
	FamilySpeedRange  = "speed_range"
	FamilyCategory    = "category"
	FamilyElaboration = "elaboration"
	FamilyPronoun     = "pronoun"
	FamilyStability   = "stability"
	FamilySkill       = "skill"
	FamilyDistance    = "throw_distance"
)

// Rule is a named pattern. Group 1 always holds the matched phrase.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// word wraps a pattern body in Unicode-aware word boundaries.
// RE2's \b only knows ASCII, which breaks on "øvet" and "fortæl".
func word(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + body + `)(?:[^\p{L}\p{N}]|$)`)
}

// match returns the phrase and its byte span, or ok=false
func (r Rule) match(s string) (groups []string, start, end int, ok bool) {
	loc := r.Pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil, 0, 0, false
	}
	groups = make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups, loc[2], loc[3], true
}

// SpeedRule captures the two ends of a range in groups 2 and 3
type SpeedRule struct {
	Rule
}

func (r SpeedRule) parse(s string) (model.SpeedRange, string, bool) {
	g, _, _, ok := r.match(s)
	if !ok || len(g) < 4 {
		return model.SpeedRange{}, "", false
	}
	a, errA := strconv.Atoi(g[2])
	b, errB := strconv.Atoi(g[3])
	if errA != nil || errB != nil {
		return model.SpeedRange{}, "", false
	}
	if a > b {
		a, b = b, a
	}
	if a < 1 || b > 15 {
		return model.SpeedRange{}, "", false
	}
	return model.SpeedRange{Low: a, High: b}, g[1], true
}

const rangeSep = `\s*(?:-|–|—|til|to)\s*`

// DefaultSpeedRules recognise "7-9 speed", "speed 7-9", "speed 7 til 9",
// "7 to 9 speed", "mellem 7 og 9 speed" and "between 7 and 9 speed"
func DefaultSpeedRules() []SpeedRule {
	return []SpeedRule{
		{Rule{"range_then_speed", word(`(\d{1,2})` + rangeSep + `(\d{1,2})\s*(?:i\s+|in\s+)?speed`)}},
		{Rule{"speed_then_range", word(`speed\s*(?:på\s+|of\s+|:\s*)?(\d{1,2})` + rangeSep + `(\d{1,2})`)}},
		{Rule{"between_then_speed", word(`(?:mellem|between)\s+(\d{1,2})\s+(?:og|and)\s+(\d{1,2})\s*speed`)}},
		{Rule{"speed_between", word(`speed\s+(?:mellem|between)\s+(\d{1,2})\s+(?:og|and)\s+(\d{1,2})`)}},
	}
}

// CategoryRule maps a keyword pattern to a category
type CategoryRule struct {
	Rule
	Category model.Category
}

// DefaultCategoryRules follow the original keyword order: putter before
// approach, fairway before the generic "driver"
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Rule{"putter", word(`putters?|putte[\s-]?discs?|puttere`)}, model.CategoryPutter},
		{Rule{"approach", word(`approach(?:\s*discs?)?`)}, model.CategoryPutter},
		{Rule{"midrange", word(`mid[\s-]?ranges?|midrangers?|mellemdistance\w*|mids|mid[\s-]?discs?`)}, model.CategoryMidrange},
		{Rule{"fairway", word(`fairway(?:[\s-]*drivers?|[\s-]*drivere)?`)}, model.CategoryFairwayDriver},
		{Rule{"distance_driver", word(`distance[\s-]*(?:drivers?|drivere|discs?)|langdistance\w*`)}, model.CategoryDistanceDriver},
		{Rule{"driver", word(`drivers?|drivere`)}, model.CategoryDistanceDriver},
	}
}

// DefaultElaborationRules are "tell me more" phrasings in Danish and English
func DefaultElaborationRules() []Rule {
	return []Rule{
		{"tell_me_more_about", word(`tell\s+me\s+(?:more\s+)?about`)},
		{"tell_me_more", word(`tell\s+me\s+more`)},
		{"more_about", word(`more\s+about`)},
		{"what_about", word(`what\s+about`)},
		{"describe", word(`describe`)},
		{"explain", word(`explain`)},
		{"fortael", word(`fort(?:æ|ae|a)l(?:\s+(?:mig|lidt|os))*(?:\s+mere)?(?:\s+om)?`)},
		{"forklar", word(`forklare?`)},
		{"mere_om", word(`mere\s+om`)},
		{"hvad_med", word(`hvad\s+med`)},
		{"beskriv", word(`beskriv`)},
		{"information_om", word(`info(?:rmation)?\s+om`)},
	}
}

// DefaultPronounRules refer back to the discs shown in the previous answer
func DefaultPronounRules() []Rule {
	return []Rule{
		{"da_dem", word(`dem|disse|de\s+to|de\s+tre|de`)},
		{"en_them", word(`them|those|these|they`)},
	}
}

// StabilityRule maps a keyword pattern to a stability
type StabilityRule struct {
	Rule
	Stability model.Stability
}

func DefaultStabilityRules() []StabilityRule {
	return []StabilityRule{
		{Rule{"understable", word(`understabile?|understable|turnover`)}, model.StabilityUnderstable},
		{Rule{"overstable", word(`overstabile?|overstable`)}, model.StabilityOverstable},
		{Rule{"stable", word(`stabile?|stable|neutral`)}, model.StabilityStable},
	}
}

// SkillRule maps a keyword pattern to a skill level
type SkillRule struct {
	Rule
	Level model.SkillLevel
}

func DefaultSkillRules() []SkillRule {
	return []SkillRule{
		{Rule{"beginner", word(`nybegynder\w*|begynder\w*|starter|beginners?|newbie|novice`)}, model.SkillBeginner},
		{Rule{"intermediate", word(`øvet|oevet|intermediate|mellemniveau`)}, model.SkillIntermediate},
		{Rule{"advanced", word(`erfaren|avanceret|advanced|experienced|professionel`)}, model.SkillAdvanced},
	}
}

// DistanceRule reads a throwing distance from group 2. Feet are converted.
type DistanceRule struct {
	Rule
	Feet bool
}

func DefaultDistanceRules() []DistanceRule {
	return []DistanceRule{
		{Rule{"meters", word(`(\d{2,3})\s*(?:m|meter|meters|metres?)`)}, false},
		{Rule{"feet", word(`(\d{2,3})\s*(?:ft|feet|fod)`)}, true},
	}
}
