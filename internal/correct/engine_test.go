package correct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/model"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewEngine(c, DefaultOptions())
}

func TestCorrect_PhotonSpeedOnly(t *testing.T) {
	e := newEngine(t)

	res := e.Correct("Photon er en 13/5/-1/2.5 disc")

	assert.Equal(t, "Photon er en 11/5/-1/2.5 disc", res.Text)
	require.Len(t, res.Corrections, 1)
	c := res.Corrections[0]
	assert.Equal(t, "Photon", c.Disc)
	assert.Equal(t, "speed", c.Field)
	assert.Equal(t, "13", c.Original)
	assert.Equal(t, "11", c.Corrected)
	assert.Equal(t, RuleSlash, c.Rule)
	assert.Equal(t, 13, c.Offset)
	assert.Equal(t, []string{"Photon"}, res.Mentions)
}

func TestCorrect_Scenarios(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "labeled speed",
			input: "**Photon**\n- Speed: 13\n- Glide: 5",
			want:  "**Photon**\n- Speed: 11\n- Glide: 5",
		},
		{
			name:  "flight header",
			input: "**Roadrunner**\n- Flight: 13/5/-3/1",
			want:  "**Roadrunner**\n- Flight: 9/5/-4/1",
		},
		{
			name:  "independent discs",
			input: "**Photon**\n- Speed: 13\n\n**Volt**\n- Speed: 13",
			want:  "**Photon**\n- Speed: 11\n\n**Volt**\n- Speed: 8",
		},
		{
			name:  "heading with manufacturer",
			input: "### 1. **Destroyer** af Innova\n- Flight: 14/5/-2/4",
			want:  "### 1. **Destroyer** af Innova\n- Flight: 12/5/-1/3",
		},
		{
			name:  "bold labels",
			input: "**Volt**\n**Speed:** 9 | **Glide:** 5 | **Turn:** -1 | **Fade:** 2",
			want:  "**Volt**\n**Speed:** 8 | **Glide:** 5 | **Turn:** -0.5 | **Fade:** 2",
		},
		{
			name:  "decimal comma and spacing",
			input: "Volt (8 / 5 / -1,5 / 2)",
			want:  "Volt (8 / 5 / -0,5 / 2)",
		},
		{
			name:  "explicit plus sign",
			input: "Felon: 9/3/+1/4",
			want:  "Felon: 9/3/+0.5/4",
		},
		{
			name:  "unicode minus",
			input: "Roadrunner 9/5/−2/1",
			want:  "Roadrunner 9/5/−4/1",
		},
		{
			name:  "inline discs on one line",
			input: "Volt (9/5/-1/2) og Escape (8/5/-1/2)",
			want:  "Volt (8/5/-0.5/2) og Escape (9/5/-1/2)",
		},
		{
			name:  "alias and folding",
			input: "Prøv en Jarn: 5/3/0/2 eller Buzz 5/4/-1/1",
			want:  "Prøv en Jarn: 4/3/0/2 eller Buzz 5/4/-1/1",
		},
		{
			name:  "labels joined by slashes",
			input: "**Photon**\nSpeed: 13 / Glide: 5 / Turn: -1 / Fade: 2.5",
			want:  "**Photon**\nSpeed: 11 / Glide: 5 / Turn: -1 / Fade: 2.5",
		},
		{
			name:  "pipe separated numbers",
			input: "**Photon**\nFlight: 13 | 5 | -1 | 2.5",
			want:  "**Photon**\nFlight: 11 | 5 | -1 | 2.5",
		},
		{
			name:  "table row",
			input: "| Volt | MVP | 9 | 5 | -1 | 2 |",
			want:  "| Volt | MVP | 8 | 5 | -0.5 | 2 |",
		},
		{
			name:  "prose labels without colon",
			input: "Volt has speed 9, glide 5",
			want:  "Volt has speed 8, glide 5",
		},
		{
			name:  "plastic between disc and numbers",
			input: "Try a Destroyer in Star plastic, 14/5/-1/3",
			want:  "Try a Destroyer in Star plastic, 12/5/-1/3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Correct(tt.input)
			assert.Equal(t, tt.want, res.Text)
			assert.True(t, res.Changed())
		})
	}
}

func TestCorrect_ManufacturerFix(t *testing.T) {
	e := newEngine(t)

	res := e.Correct("**Volt** by Innova is a great fairway.")

	assert.Equal(t, "**Volt** by MVP is a great fairway.", res.Text)
	require.Len(t, res.Corrections, 1)
	assert.Equal(t, model.FieldManufacturer, res.Corrections[0].Field)
	assert.Equal(t, RuleManufacturer, res.Corrections[0].Rule)
	assert.Equal(t, "Innova", res.Corrections[0].Original)
}

func TestCorrect_ManufacturerAliasAccepted(t *testing.T) {
	e := newEngine(t)

	input := "**Destroyer** fra Innova Champion Discs: 12/5/-1/3"
	res := e.Correct(input)
	assert.Equal(t, input, res.Text)
	assert.Empty(t, res.Corrections)
}

func TestCorrect_ManufacturerDisabled(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	e := NewEngine(c, Options{})

	input := "**Volt** by Innova"
	assert.Equal(t, input, e.Correct(input).Text)
}

func TestCorrect_UnknownDiscUntouched(t *testing.T) {
	e := newEngine(t)

	input := "**Firefly**\nFlight: 13/5/-1/2"
	res := e.Correct(input)
	assert.Equal(t, input, res.Text)
	assert.Empty(t, res.Corrections)
	assert.Empty(t, res.Mentions)

	input = "Photon is fast. If you want something slower, a Firefly is 2/4/0/1."
	res = e.Correct(input)
	assert.Equal(t, input, res.Text, "numbers after another name are not the Photon's")
	assert.Empty(t, res.Corrections)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Photon", res.Skipped[0].Disc)
	assert.Equal(t, "2/4/0/1", res.Skipped[0].Text)
	assert.Equal(t, "flight numbers follow another name", res.Skipped[0].Reason)
	assert.Equal(t, input[res.Skipped[0].Offset:res.Skipped[0].Offset+len("2/4/0/1")], "2/4/0/1")

	input = "Photon is fast. A lowercase leopard flies 6/5/-2/1 and turns over."
	res = e.Correct(input)
	assert.Equal(t, input, res.Text, "a lowercase mention still ends the window")
	assert.Empty(t, res.Corrections)
	assert.Equal(t, []string{"Photon"}, res.Mentions)

	input = "Photon is fast. My friend throws a Firefly with Speed: 2"
	assert.Equal(t, input, e.Correct(input).Text)
}

func TestCorrect_ProseLabelNeedsClauseEnd(t *testing.T) {
	e := newEngine(t)

	for _, input := range []string{
		"The Destroyer will turn 1 or 2 times less than you think.",
		"Volt has a speed 9 feel to it",
	} {
		res := e.Correct(input)
		assert.Equal(t, input, res.Text)
		assert.Empty(t, res.Corrections)
	}

	res := e.Correct("The Destroyer will turn: 1 in the wind")
	assert.Equal(t, "The Destroyer will turn: -1 in the wind", res.Text, "a colon marks a label")
}

func TestCorrect_WindowEndsAtNextSection(t *testing.T) {
	e := newEngine(t)

	input := "**Volt** 8/5/-0.5/2\n\n**Firefly**\nFlight: 13/5/-1/2"
	res := e.Correct(input)
	assert.Equal(t, input, res.Text, "numbers under another title belong to that disc")

	input = "### Volt\nEn god disc.\n\n## Alternativer\nSpeed: 13"
	assert.Equal(t, input, e.Correct(input).Text)
}

func TestCorrect_WindowLineLimit(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	e := NewEngine(c, Options{WindowLines: 2})

	input := "Volt\nlinje\nlinje\nlinje\nSpeed: 13"
	assert.Equal(t, input, e.Correct(input).Text)

	input = "Volt\nlinje\nSpeed: 13"
	assert.Equal(t, "Volt\nlinje\nSpeed: 8", e.Correct(input).Text)
}

func TestCorrect_OnlyFirstQuadruplePerWindow(t *testing.T) {
	e := newEngine(t)

	res := e.Correct("Volt 9/5/-1/2, ikke at forveksle med 12/5/-1/3")
	assert.Equal(t, "Volt 8/5/-0.5/2, ikke at forveksle med 12/5/-1/3", res.Text)
	assert.Len(t, res.Corrections, 2, "speed and turn")
}

func TestCorrect_NoQuadruple(t *testing.T) {
	e := newEngine(t)

	for _, input := range []string{
		"Volt er en rigtig god fairway driver.",
		"Ingen discs her.",
		"",
	} {
		res := e.Correct(input)
		assert.Equal(t, input, res.Text)
		assert.Empty(t, res.Corrections)
		assert.False(t, res.Changed())
	}
}

func TestCorrect_SkippedFragments(t *testing.T) {
	e := newEngine(t)

	res := e.Correct("Volt 9/5/-1 er hurtig. Speed 7-9 passer.")
	assert.Equal(t, "Volt 9/5/-1 er hurtig. Speed 7-9 passer.", res.Text)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "Volt", res.Skipped[0].Disc)
	assert.Contains(t, res.Skipped[0].Reason, "found 3")
	assert.Contains(t, res.Skipped[1].Reason, "range")

	res = e.Correct("**Volt** by Westside Discs")
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "unknown manufacturer", res.Skipped[0].Reason)

	res = e.Correct("Volt by far the best")
	assert.Empty(t, res.Skipped)
}

func TestCorrect_LowercaseMentionIgnored(t *testing.T) {
	e := newEngine(t)

	input := "in the zone 5/5/0/0 you need focus"
	assert.Equal(t, input, e.Correct(input).Text)
}

func TestCorrect_Idempotent(t *testing.T) {
	e := newEngine(t)

	inputs := []string{
		"Photon er en 13/5/-1/2.5 disc",
		"### 1. **Destroyer** af Discraft\n- Flight: 14/5/-2/4\n\n### 2. **Volt**\nSpeed: 13, Glide: 4, Turn: +1, Fade: 3,5",
		"Volt (9/5/-1/2) og Escape (8/5/-1/2)",
		"Roadrunner 9/5/−2/1 og Felon 9/3/+1/4",
		"**Volt** by Innova",
		"**Photon**\nFlight: 13 | 5 | -1 | 2.5",
		"**Photon**\nSpeed: 13 / Glide: 5 / Turn: -1 / Fade: 2.5",
	}

	for _, input := range inputs {
		once := e.Correct(input)
		twice := e.Correct(once.Text)
		assert.Equal(t, once.Text, twice.Text, input)
		assert.Empty(t, twice.Corrections, input)
	}
}

func TestCorrect_BackToFrontKeepsOffsets(t *testing.T) {
	e := newEngine(t)

	input := "Destroyer 14/6/-2/4 og Aviar 3/3/1/1"
	res := e.Correct(input)

	assert.Equal(t, "Destroyer 12/5/-1/3 og Aviar 2/3/0/1", res.Text)
	for _, c := range res.Corrections {
		assert.Equal(t, c.Original, input[c.Offset:c.Offset+len(c.Original)])
	}
}

func TestFormatLike(t *testing.T) {
	tests := []struct {
		orig string
		v    float64
		want string
	}{
		{"13", 11, "11"},
		{"-1,5", -0.5, "-0,5"},
		{"+1", 0.5, "+0.5"},
		{"+1", -1, "-1"},
		{"−2", -4, "−4"},
		{"2.0", 3, "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatLike(tt.orig, tt.v), tt.orig)
	}
}
