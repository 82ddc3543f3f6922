package correct

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/util"
)

// Rule names, in precedence order. When two rules locate the same span the
// earlier rule's edit is kept.
const (
	RuleSlash        = "slash"
	RulePipe         = "pipe"
	RuleLabeled      = "labeled"
	RuleManufacturer = "manufacturer"
)

// A flight number as LLMs write it: 8, -0.5, +1, 2,5, −1
const numPattern = `[+\-−]?\d{1,2}(?:[.,]\d+)?`

var (
	numberRe   = regexp.MustCompile(numPattern)
	slashRunRe = regexp.MustCompile(numPattern + `(?:\s*/\s*` + numPattern + `)+`)
	pipeRunRe  = regexp.MustCompile(numPattern + `(?:[ \t]*\|[ \t]*` + numPattern + `)+`)

	// A number continuing a slash or pipe run after a labeled value
	runTailRe = regexp.MustCompile(`^\s*[/|]\s*` + numPattern)
	// Another field label right after a separator-less value: "speed 9 glide 5"
	nextLabelRe = regexp.MustCompile(`(?i)^\**(?:speed|glide|turn|fade)(?:[^\p{L}]|$)`)

	labelRes = map[model.FlightField]*regexp.Regexp{
		model.FieldSpeed: labelRe(`speed`),
		model.FieldGlide: labelRe(`glide`),
		model.FieldTurn:  labelRe(`turn`),
		model.FieldFade:  labelRe(`fade`),
	}

	// "Speed 7-9", "speed 7 til 9": a range, not a value
	rangeTailRe = regexp.MustCompile(`^\s*(?:-|–|—|til|to)\s*\d`)

	makerLeadRe = regexp.MustCompile(`^\**\s*(?i:af|by|fra|from)\s+\**`)
	makerWordRe = regexp.MustCompile(`^[\p{L}\p{N}]+`)
)

// labelRe matches "Speed: 13", "**Turn:** -1", "fade=2". Groups: 1 and 2 the
// emphasis around the label, 3 the separator, 4 the number.
func labelRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}*])(\*{1,2})?` + label + `(\**)\s*([:=])?\s*\**\s*(` + numPattern + `)`)
}

// fieldLabels are bold texts that introduce flight data rather than a new section
var fieldLabels = map[string]bool{
	"speed":         true,
	"glide":         true,
	"turn":          true,
	"fade":          true,
	"flight":        true,
	"flightnumbers": true,
	"flightnumre":   true,
	"flyvetal":      true,
}

// valueSpan is a number located in the answer
type valueSpan struct {
	start, end int
	text       string
}

// parseNumber reads a flight number in any of the written forms
func parseNumber(s string) (float64, error) {
	n := strings.NewReplacer("−", "-", ",", ".").Replace(s)
	n = strings.TrimPrefix(n, "+")
	return strconv.ParseFloat(n, 64)
}

func sameNumber(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// formatLike renders v the way orig was written. A decimal comma, an
// explicit plus sign and a Unicode minus carry over.
func formatLike(orig string, v float64) string {
	out := model.FormatNumber(v)
	if strings.Contains(orig, ",") {
		out = strings.Replace(out, ".", ",", 1)
	}
	if v < 0 && strings.HasPrefix(orig, "−") {
		out = "−" + strings.TrimPrefix(out, "-")
	}
	if v > 0 && strings.HasPrefix(orig, "+") {
		out = "+" + out
	}
	return out
}

// findSlash returns the first S/G/T/F quadruple in text. Slash runs with
// three or five and more parts are reported as skipped; two-part runs such as
// "1/2" are ignored.
func findSlash(text string) ([]valueSpan, []skip) {
	return findRun(text, slashRunRe, '/')
}

// findPipe is findSlash for "13 | 5 | -1 | 2.5" and Markdown table cells
func findPipe(text string) ([]valueSpan, []skip) {
	return findRun(text, pipeRunRe, '|')
}

func findRun(text string, re *regexp.Regexp, sep byte) ([]valueSpan, []skip) {
	var skips []skip
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if !isolated(text, loc[0], loc[1], sep) {
			continue
		}
		run := text[loc[0]:loc[1]]
		parts := numberRe.FindAllStringIndex(run, -1)
		switch {
		case len(parts) == 4:
			spans := make([]valueSpan, 4)
			for i, p := range parts {
				spans[i] = valueSpan{start: loc[0] + p[0], end: loc[0] + p[1], text: run[p[0]:p[1]]}
			}
			return spans, skips
		case len(parts) >= 3:
			skips = append(skips, skip{
				start:  loc[0],
				text:   run,
				reason: fmt.Sprintf("expected 4 flight numbers, found %d", len(parts)),
			})
		}
	}
	return nil, skips
}

// isolated reports whether a run is not glued to surrounding digits or to
// another run with the same separator
func isolated(text string, start, end int, sep byte) bool {
	if start > 0 {
		switch c := text[start-1]; {
		case c >= '0' && c <= '9', c == '.', c == ',':
			return false
		case sep == '/' && c == '/':
			return false
		}
	}
	if end < len(text) {
		switch c := text[end]; {
		case c >= '0' && c <= '9':
			return false
		case sep == '/' && c == '/':
			return false
		}
	}
	return true
}

// findLabeled returns the first "Field: value" per flight field in text.
// A label without a colon or bold emphasis is prose ("turn 1 or 2 times"),
// so its value must end the clause or be followed by the next label.
func findLabeled(text string) (map[model.FlightField]valueSpan, []skip) {
	found := make(map[model.FlightField]valueSpan)
	var skips []skip

	for _, field := range model.FlightFields {
		re := labelRes[field]
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[8], loc[9]
			tail := text[end:]
			if runTailRe.MatchString(tail) {
				// Part of a slash or pipe quadruple
				continue
			}
			if tail != "" && tail[0] >= '0' && tail[0] <= '9' {
				continue
			}
			if m := rangeTailRe.FindString(tail); m != "" {
				skips = append(skips, skip{
					start:  start,
					text:   text[start : end+len(m)],
					reason: "range instead of a single " + string(field) + " value",
				})
				continue
			}
			marked := loc[2] >= 0 || loc[5] > loc[4] || loc[6] >= 0
			if !marked && !closesValue(tail) {
				continue
			}
			found[field] = valueSpan{start: start, end: end, text: text[start:end]}
			break
		}
	}
	return found, skips
}

// closesValue reports whether tail ends a separator-less labeled value
func closesValue(tail string) bool {
	t := strings.TrimLeft(tail, " \t")
	if t == "" {
		return true
	}
	switch t[0] {
	case '\n', '\r', ',', '|', ';', ')':
		return true
	}
	return nextLabelRe.MatchString(t)
}

// findMaker locates "af Maker" / "by Maker" directly after a disc mention.
// When a run of up to four words names a known manufacturer it returns the
// longest such run with ok=true. Otherwise the span holds the first word.
func findMaker(text string, normalize func(string) (string, bool)) (span valueSpan, brand string, ok bool) {
	lead := makerLeadRe.FindString(text)
	if lead == "" {
		return valueSpan{}, "", false
	}

	pos := len(lead)
	var ends []int
	for len(ends) < 4 {
		w := makerWordRe.FindString(text[pos:])
		if w == "" {
			break
		}
		pos += len(w)
		ends = append(ends, pos)
		if !strings.HasPrefix(text[pos:], " ") {
			break
		}
		pos++
	}
	if len(ends) == 0 {
		return valueSpan{}, "", false
	}

	for i := len(ends) - 1; i >= 0; i-- {
		cand := text[len(lead):ends[i]]
		if b, known := normalize(cand); known {
			return valueSpan{start: len(lead), end: ends[i], text: cand}, b, true
		}
	}
	return valueSpan{start: len(lead), end: ends[0], text: text[len(lead):ends[0]]}, "", false
}

// isFieldLabel reports whether a bold text is a flight data label
func isFieldLabel(s string) bool {
	key := util.FoldKey(strings.TrimRight(strings.TrimSpace(s), ":"))
	return fieldLabels[key]
}
