package extract

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/util"
)

// TitleKind says how a disc was introduced in an answer
type TitleKind string

const (
	TitleHeading TitleKind = "heading"
	TitleStrong  TitleKind = "strong"
	TitleLink    TitleKind = "link"
	TitleMention TitleKind = "mention" // plain text fallback
)

// Title is a disc the answer presents as a recommendation
type Title struct {
	Name   string    // Canonical catalog name
	Kind   TitleKind // Markup that introduced it
	Line   int       // 0-based source line
	Offset int       // Byte offset of the title text
	Level  int       // Heading level, 0 otherwise
}

// AnswerParser finds the discs an LLM answer recommends
type AnswerParser struct {
	catalog *catalog.Catalog
	parser  parser.Parser
}

// NewAnswerParser creates a parser backed by the catalog
func NewAnswerParser(c *catalog.Catalog) *AnswerParser {
	return &AnswerParser{
		catalog: c,
		parser:  goldmark.New().Parser(),
	}
}

// outline is the Markdown structure relevant to recommendations
type outline struct {
	titles   []Title
	headings map[int]int // line -> level, for every heading
}

func (p *AnswerParser) outline(answer string) outline {
	src := []byte(answer)
	doc := p.parser.Parse(text.NewReader(src))
	out := outline{headings: make(map[int]int)}

	add := func(kind TitleKind, n ast.Node, level int) {
		txt, start := nodeText(n, src)
		if start < 0 {
			return
		}
		line := bytes.Count(src[:start], []byte("\n"))
		for _, m := range p.catalog.Mentions(txt) {
			out.titles = append(out.titles, Title{
				Name:   m.Name,
				Kind:   kind,
				Line:   line,
				Offset: start + m.Start,
				Level:  level,
			})
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Lines().Len() > 0 {
				start := node.Lines().At(0).Start
				out.headings[bytes.Count(src[:start], []byte("\n"))] = node.Level
			}
			add(TitleHeading, node, node.Level)
		case *ast.Emphasis:
			if node.Level >= 2 {
				add(TitleStrong, node, 0)
			}
		case *ast.Link:
			add(TitleLink, node, 0)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.SliceStable(out.titles, func(i, j int) bool {
		return out.titles[i].Offset < out.titles[j].Offset
	})
	return out
}

// nodeText concatenates the text under n and returns the offset of its first segment.
// Inline text is only approximately contiguous, which is enough for name matching.
func nodeText(n ast.Node, src []byte) (string, int) {
	var b strings.Builder
	start := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			if start < 0 {
				start = t.Segment.Start
			}
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String(), start
}

// Recommended returns the discs the answer introduces with a heading, bold
// text or a link, in order and without duplicates. When the answer has no
// such markup, capitalised plain mentions are used instead.
func (p *AnswerParser) Recommended(answer string) []Title {
	seen := make(map[string]bool)
	var titles []Title

	for _, t := range p.outline(answer).titles {
		if !seen[t.Name] {
			seen[t.Name] = true
			titles = append(titles, t)
		}
	}
	if len(titles) > 0 {
		return titles
	}

	for _, m := range p.catalog.Mentions(answer) {
		if !m.Capitalized || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		titles = append(titles, Title{
			Name:   m.Name,
			Kind:   TitleMention,
			Line:   strings.Count(answer[:m.Start], "\n"),
			Offset: m.Start,
		})
	}
	return titles
}

// RecommendedNames is Recommended reduced to canonical names
func (p *AnswerParser) RecommendedNames(answer string) []string {
	titles := p.Recommended(answer)
	names := make([]string, 0, len(titles))
	for _, t := range titles {
		names = append(names, t.Name)
	}
	return names
}

// UnknownTitles returns the bold heading titles that name no catalog disc,
// such as "### **Firefly** af Discmania" when Firefly is not in the catalog.
// Plain headings are ignored; they are usually section names.
func (p *AnswerParser) UnknownTitles(answer string) []string {
	src := []byte(answer)
	doc := p.parser.Parse(text.NewReader(src))

	seen := make(map[string]bool)
	var names []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			em, ok := c.(*ast.Emphasis)
			if !ok || em.Level < 2 {
				continue
			}
			txt, _ := nodeText(em, src)
			name := strings.TrimSpace(strings.TrimLeft(txt, "0123456789. "))
			if name == "" || len(p.catalog.Mentions(txt)) > 0 {
				break
			}
			if key := util.FoldKey(name); !seen[key] {
				seen[key] = true
				names = append(names, name)
			}
			break
		}
		return ast.WalkSkipChildren, nil
	})
	return names
}

// Prune removes the sections that introduce rejected discs.
//
// A section starts at a line titling only rejected discs. Under a heading it
// runs to the next heading of the same or higher level; otherwise it runs to
// the next title or heading, or to a paragraph break followed by text that is
// not indented deeper than the title line. Lines titling a kept disc are
// never removed.
func (p *AnswerParser) Prune(answer string, rejected []string) string {
	if len(rejected) == 0 {
		return answer
	}
	drop := make(map[string]bool, len(rejected))
	for _, name := range rejected {
		drop[util.FoldKey(name)] = true
	}

	ol := p.outline(answer)
	lines := strings.Split(answer, "\n")

	// line -> whether every disc titled there is rejected
	titleLine := make(map[int]bool)
	for _, t := range ol.titles {
		all, seen := titleLine[t.Line]
		if !seen {
			all = true
		}
		titleLine[t.Line] = all && drop[util.FoldKey(t.Name)]
	}

	isBoundary := func(i int) bool {
		_, title := titleLine[i]
		_, heading := ol.headings[i]
		return title || heading
	}

	removed := make([]bool, len(lines))
	for start := 0; start < len(lines); start++ {
		if all, ok := titleLine[start]; !ok || !all {
			continue
		}

		end := len(lines)
		if level, isHeading := ol.headings[start]; isHeading {
			for j := start + 1; j < len(lines); j++ {
				if l, ok := ol.headings[j]; ok && l <= level {
					end = j
					break
				}
				if all, ok := titleLine[j]; ok && !all {
					end = j
					break
				}
			}
		} else {
			indent := indentOf(lines[start])
			for j := start + 1; j < len(lines); j++ {
				if isBoundary(j) {
					end = j
					break
				}
				if strings.TrimSpace(lines[j]) != "" {
					continue
				}
				k := j + 1
				for k < len(lines) && strings.TrimSpace(lines[k]) == "" {
					k++
				}
				if k == len(lines) || isBoundary(k) || indentOf(lines[k]) <= indent {
					end = j
					break
				}
			}
		}

		for i := start; i < end; i++ {
			removed[i] = true
		}
	}

	pruned := false
	for _, r := range removed {
		pruned = pruned || r
	}
	if !pruned {
		return answer
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if removed[i] {
			continue
		}
		// Collapse the blank-line runs left behind
		if strings.TrimSpace(line) == "" && (len(kept) == 0 || strings.TrimSpace(kept[len(kept)-1]) == "") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
