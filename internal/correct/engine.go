// Package correct rewrites hallucinated flight numbers and manufacturer names
// in an LLM answer so they match the disc catalog.
//
// Correction runs in two passes. The read pass finds catalog mentions, gives
// each one a window of text it owns, and applies the rule grammar inside the
// window. The write pass sorts the resulting edits and applies them back to
// front so earlier edits never shift later offsets.
package correct

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/util"
)

// DefaultWindowLines bounds how far after a mention its flight data may appear
const DefaultWindowLines = 8

// Options configures an Engine
type Options struct {
	WindowLines  int  // Lines after the mention line; 0 means DefaultWindowLines
	Manufacturer bool // Also fix "Disc by Maker" attributions
}

// DefaultOptions returns the options used by the pipeline
func DefaultOptions() Options {
	return Options{WindowLines: DefaultWindowLines, Manufacturer: true}
}

// Engine corrects answers against one catalog. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	opts    Options
	log     zerolog.Logger
}

// NewEngine creates a correction engine
func NewEngine(c *catalog.Catalog, opts Options) *Engine {
	if opts.WindowLines <= 0 {
		opts.WindowLines = DefaultWindowLines
	}
	return &Engine{
		catalog: c,
		opts:    opts,
		log:     logging.Component("correct"),
	}
}

// window is the span of answer text whose flight data belongs to one disc
type window struct {
	disc       model.DiscRecord
	mention    catalog.Mention
	start, end int
	prose      bool // mention sits in running text, not a heading or title
}

type edit struct {
	start, end int
	repl       string
	correction model.Correction
}

type skip struct {
	start  int
	text   string
	reason string
}

// Correct rewrites every flight number and manufacturer in answer that
// disagrees with the catalog. Text without a recognisable quadruple comes
// back unchanged with no corrections.
func (e *Engine) Correct(answer string) model.CorrectionResult {
	result := model.CorrectionResult{Text: answer}

	windows := e.windows(answer)
	seen := make(map[string]bool)
	var (
		edits   []edit
		skipped []model.SkippedFragment
	)

	for _, w := range windows {
		if !seen[w.disc.Name] {
			seen[w.disc.Name] = true
			result.Mentions = append(result.Mentions, w.disc.Name)
		}

		wEdits, wSkips := e.scan(answer, w)
		edits = append(edits, wEdits...)
		for _, s := range wSkips {
			skipped = append(skipped, model.SkippedFragment{
				Disc:   w.disc.Name,
				Text:   s.text,
				Reason: s.reason,
				Offset: s.start,
			})
		}
	}

	edits = resolveOverlaps(edits)
	result.Text = apply(answer, edits)
	for _, ed := range edits {
		result.Corrections = append(result.Corrections, ed.correction)
		e.log.Debug().
			Str("disc", ed.correction.Disc).
			Str("field", ed.correction.Field).
			Str("from", ed.correction.Original).
			Str("to", ed.correction.Corrected).
			Str("rule", ed.correction.Rule).
			Msg("corrected value")
	}
	result.Skipped = skipped
	return result
}

// windows assigns each capitalised mention the text up to the next mention
// of a different disc, the next heading or section title, or the line limit.
// A repeated mention inside the current window does not open a new one.
// Lowercase mentions open no window but still end the one before them.
func (e *Engine) windows(answer string) []window {
	lines := lineStarts(answer)
	var out []window

	mentions := e.catalog.Mentions(answer)
	for i, m := range mentions {
		if !m.Capitalized {
			continue
		}
		if n := len(out); n > 0 && out[n-1].disc.Name == m.Name && m.Start < out[n-1].end {
			continue
		}
		disc, err := e.catalog.Lookup(m.Name)
		if err != nil {
			continue
		}

		end := len(answer)
		for _, next := range mentions[i+1:] {
			if next.Name != m.Name {
				end = next.Start
				break
			}
		}

		line := lineOf(lines, m.Start)
		for j := line + 1; j < len(lines) && lines[j] < end; j++ {
			if j > line+e.opts.WindowLines || isSectionBreak(lineText(answer, lines, j)) {
				end = lines[j]
				break
			}
		}

		out = append(out, window{
			disc:    disc,
			mention: m,
			start:   m.End,
			end:     end,
			prose:   !isSectionBreak(lineText(answer, lines, line)),
		})
	}
	return out
}

// scan applies the rule grammar inside one window
func (e *Engine) scan(answer string, w window) ([]edit, []skip) {
	text := answer[w.start:w.end]
	var (
		edits []edit
		skips []skip
	)

	addValue := func(field model.FlightField, v valueSpan, rule string) {
		got, err := parseNumber(v.text)
		if err != nil {
			skips = append(skips, skip{start: w.start + v.start, text: v.text, reason: "unparseable number"})
			return
		}
		want := w.disc.Field(field)
		if sameNumber(got, want) {
			return
		}
		repl := formatLike(v.text, want)
		edits = append(edits, edit{
			start: w.start + v.start,
			end:   w.start + v.end,
			repl:  repl,
			correction: model.Correction{
				Disc:      w.disc.Name,
				Field:     string(field),
				Original:  v.text,
				Corrected: repl,
				Rule:      rule,
				Offset:    w.start + v.start,
			},
		})
	}

	span, brand, ok := findMaker(text, e.catalog.NormalizeManufacturer)

	// In running text, numbers after another proper name describe that name
	owned := func(start int) bool {
		if !w.prose {
			return true
		}
		from := span.end
		if from > start {
			from = 0
		}
		return e.foreignName(answer, w, w.start+from, w.start+start) == ""
	}

	var rel []skip
	rule := RuleSlash
	quad, runSkips := findSlash(text)
	if quad == nil {
		var pipeSkips []skip
		quad, pipeSkips = findPipe(text)
		runSkips = append(runSkips, pipeSkips...)
		rule = RulePipe
	}
	if quad != nil && !owned(quad[0].start) {
		rel = append(rel, skip{
			start:  quad[0].start,
			text:   text[quad[0].start:quad[3].end],
			reason: "flight numbers follow another name",
		})
		quad = nil
	}
	for i, v := range quad {
		addValue(model.FlightFields[i], v, rule)
	}
	rel = append(rel, runSkips...)

	labeled, labelSkips := findLabeled(text)
	for _, field := range model.FlightFields {
		v, found := labeled[field]
		if !found {
			continue
		}
		if !owned(v.start) {
			rel = append(rel, skip{start: v.start, text: v.text, reason: "flight numbers follow another name"})
			continue
		}
		addValue(field, v, RuleLabeled)
	}
	rel = append(rel, labelSkips...)
	skips = append(skips, offsetSkips(rel, w.start)...)

	if e.opts.Manufacturer {
		if ok {
			if !e.catalog.SameManufacturer(brand, w.disc.Manufacturer) {
				edits = append(edits, edit{
					start: w.start + span.start,
					end:   w.start + span.end,
					repl:  w.disc.Manufacturer,
					correction: model.Correction{
						Disc:      w.disc.Name,
						Field:     model.FieldManufacturer,
						Original:  span.text,
						Corrected: w.disc.Manufacturer,
						Rule:      RuleManufacturer,
						Offset:    w.start + span.start,
					},
				})
			}
		} else if span.text != "" && startsUpper(span.text) {
			skips = append(skips, skip{
				start:  w.start + span.start,
				text:   span.text,
				reason: "unknown manufacturer",
			})
		}
	}

	return edits, skips
}

var (
	wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

	// Plastic lines and brand suffixes LLMs put between a disc and its numbers
	plasticWords = map[string]bool{
		"star": true, "champion": true, "dx": true, "gstar": true, "esp": true,
		"z": true, "neutron": true, "proton": true, "fission": true, "opto": true,
		"gold": true, "vip": true, "eclipse": true, "cosmic": true, "discs": true,
	}
)

// foreignName returns the first proper name in answer[from:to] that is not
// the window's disc, a manufacturer, a plastic or a flight label. Capitalised
// words opening a sentence are not names.
func (e *Engine) foreignName(answer string, w window, from, to int) string {
	own := make(map[string]bool)
	for _, s := range append([]string{w.disc.Name, w.mention.Text}, w.disc.Aliases...) {
		for _, word := range wordRe.FindAllString(s, -1) {
			own[util.FoldKey(word)] = true
		}
	}

	for _, loc := range wordRe.FindAllStringIndex(answer[from:to], -1) {
		word := answer[from+loc[0] : from+loc[1]]
		if utf8.RuneCountInString(word) < 2 || !startsUpper(word) || sentenceStart(answer, from+loc[0]) {
			continue
		}
		key := util.FoldKey(word)
		if own[key] || fieldLabels[key] || plasticWords[key] {
			continue
		}
		if _, known := e.catalog.NormalizeManufacturer(word); known {
			continue
		}
		return word
	}
	return ""
}

// sentenceStart reports whether the word at pos opens a sentence, line or list item
func sentenceStart(text string, pos int) bool {
	i := pos
	for i > 0 && strings.IndexByte(" \t*_\"'([>#-", text[i-1]) >= 0 {
		i--
	}
	return i == 0 || strings.IndexByte(".!?\n", text[i-1]) >= 0
}

func offsetSkips(skips []skip, base int) []skip {
	for i := range skips {
		skips[i].start += base
	}
	return skips
}

// resolveOverlaps sorts edits by offset and keeps the first of any
// overlapping pair. Rules run in precedence order, so the stable sort keeps
// the higher-precedence edit.
func resolveOverlaps(edits []edit) []edit {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})
	out := edits[:0]
	last := -1
	for _, ed := range edits {
		if ed.start < last {
			continue
		}
		out = append(out, ed)
		last = ed.end
	}
	return out
}

// apply writes sorted, non-overlapping edits back to front
func apply(text string, edits []edit) string {
	for i := len(edits) - 1; i >= 0; i-- {
		ed := edits[i]
		text = text[:ed.start] + ed.repl + text[ed.end:]
	}
	return text
}

func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineOf(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}

func lineText(text string, starts []int, i int) string {
	end := len(text)
	if i+1 < len(starts) {
		end = starts[i+1] - 1
	}
	return text[starts[i]:end]
}

var listMarkerRe = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)

// isSectionBreak reports a Markdown heading or a bold title that is not a
// flight data label
func isSectionBreak(line string) bool {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "#") {
		return true
	}
	t = listMarkerRe.ReplaceAllString(t, "")
	if !strings.HasPrefix(t, "**") {
		return false
	}
	body := t[2:]
	end := strings.Index(body, "**")
	if end < 0 {
		return false
	}
	return !isFieldLabel(body[:end])
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
