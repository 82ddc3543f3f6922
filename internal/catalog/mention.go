package catalog

import (
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/findmindisc/internal/util"
)

// Mention is one occurrence of a disc name or alias in free text
type Mention struct {
	Name  string // Canonical disc name
	Text  string // Text as written
	Start int    // Byte offsets into the searched text
	End   int
	// Capitalized is true when the written form starts with an upper-case
	// letter or a digit, as disc names do in generated answers.
	Capitalized bool
}

type token struct {
	start, end int
	digits     bool
}

// tokenize splits text into maximal runs of letters and digits
func tokenize(text string) []token {
	var toks []token
	start := -1
	digits := true
	for i, r := range text {
		word := unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
		switch {
		case word && start < 0:
			start = i
			digits = unicode.IsDigit(r)
		case word:
			digits = digits && unicode.IsDigit(r)
		case start >= 0:
			toks = append(toks, token{start: start, end: i, digits: digits})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{start: start, end: len(text), digits: digits})
	}
	return toks
}

// joinable reports whether the gap between two tokens may sit inside a name
func joinable(gap string) bool {
	if gap == "" || len(gap) > 3 {
		return false
	}
	for _, r := range gap {
		if r != ' ' && r != '-' && r != '\t' {
			return false
		}
	}
	return true
}

// Mentions finds every disc name or alias in text in order of appearance.
// Matches respect word boundaries and the longest surface form wins, so
// "Buzzz SS" is one mention and "Buzzzes" is none.
func (c *Catalog) Mentions(text string) []Mention {
	toks := tokenize(text)
	var out []Mention

	for i := 0; i < len(toks); {
		matched := false
		maxJ := i + c.maxTokens - 1
		if maxJ >= len(toks) {
			maxJ = len(toks) - 1
		}

	spans:
		for j := maxJ; j >= i; j-- {
			for k := i; k < j; k++ {
				if !joinable(text[toks[k].end:toks[k+1].start]) {
					continue spans
				}
			}
			// "Roc 3/4/0/3" is Roc followed by flight numbers, not Roc3
			if j > i && toks[j].digits && numberFollows(text, toks[j].end) {
				continue
			}

			raw := text[toks[i].start:toks[j].end]
			idx, ok := c.index[util.FoldKey(raw)]
			if !ok {
				continue
			}
			first, _ := utf8.DecodeRuneInString(raw)
			out = append(out, Mention{
				Name:        c.discs[idx].Name,
				Text:        raw,
				Start:       toks[i].start,
				End:         toks[j].end,
				Capitalized: unicode.IsUpper(first) || unicode.IsDigit(first),
			})
			i = j + 1
			matched = true
			break
		}

		if !matched {
			i++
		}
	}

	return out
}

func numberFollows(text string, pos int) bool {
	if pos >= len(text) {
		return false
	}
	switch text[pos] {
	case '/':
		return true
	case '.', ',':
		return pos+1 < len(text) && text[pos+1] >= '0' && text[pos+1] <= '9'
	}
	return false
}

// MentionedNames returns the distinct canonical names in text, in order of first appearance
func (c *Catalog) MentionedNames(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range c.Mentions(text) {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return names
}
