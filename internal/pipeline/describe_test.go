package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_Danish(t *testing.T) {
	p := newTestPipeline(t, Deps{})

	desc := p.Describe([]string{"Photon", "volt", "Firefly", "Volt"}, "da")
	require.Len(t, desc.Discs, 2)
	assert.Equal(t, []string{"Firefly"}, desc.Unresolved)

	assert.True(t, strings.HasPrefix(desc.Text, "Selvfølgelig! Her er mere information om de valgte discs:\n\n"))
	assert.Contains(t, desc.Text, "### **Photon** af MVP\n- **Type:** Distance driver\n- **Flight:** 11/5/-1/2.5\n")
	assert.Contains(t, desc.Text, "- **Turn:** Understabil - mild drejning til højre")
	assert.Contains(t, desc.Text, "- **Fade:** Medium fade")
	assert.Contains(t, desc.Text, "- **Anbefales til:** Kræver god armhastighed (erfarne spillere)")
	assert.Contains(t, desc.Text, "### **Volt** af MVP")
	assert.Contains(t, desc.Text, "- **Turn:** Neutral - flyver lige")
	assert.True(t, strings.HasSuffix(desc.Text, "(flight chart)?"))
}

func TestDescribe_English(t *testing.T) {
	p := newTestPipeline(t, Deps{})

	desc := p.Describe([]string{"Leopard", "Destroyer"}, "en")
	assert.Contains(t, desc.Text, "### **Leopard** by Innova")
	assert.Contains(t, desc.Text, "Understable - mild turn to the right")
	assert.Contains(t, desc.Text, "Good for beginners and intermediate players")
	assert.Contains(t, desc.Text, "Hard fade - strong finish to the left")
}

func TestDescribe_NothingKnown(t *testing.T) {
	p := newTestPipeline(t, Deps{})

	desc := p.Describe([]string{"Firefly"}, "da")
	assert.Empty(t, desc.Text)
	assert.Empty(t, desc.Discs)
	assert.Equal(t, []string{"Firefly"}, desc.Unresolved)
}

func TestDescribeText_Wording(t *testing.T) {
	tests := []struct {
		turn, fade float64
		turnText   string
		fadeText   string
	}{
		{-4, 1, describeDA.veryUnderstable, describeDA.softFade},
		{-3, 2, describeDA.veryUnderstable, describeDA.mediumFade},
		{-1, 3, describeDA.understable, describeDA.hardFade},
		{-0.5, 2, describeDA.neutral, describeDA.mediumFade},
		{0, 0, describeDA.neutral, describeDA.softFade},
		{1, 4, describeDA.stableTurn, describeDA.hardFade},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.turnText, describeDA.turnText(tt.turn), "turn %v", tt.turn)
		assert.Equal(t, tt.fadeText, describeDA.fadeText(tt.fade), "fade %v", tt.fade)
	}
}
