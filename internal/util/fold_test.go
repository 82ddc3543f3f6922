package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldKey(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Järn", "jarn"},
		{"JÄRN", "Jarn"},
		{"Roc 3", "Roc3"},
		{"Buzzz-SS", "buzzz ss"},
		{"Kastaplast Sörm", "kastaplastsorm"},
		{"Grønn", "gronn"},
		{"Æsir", "aesir"},
	}

	for _, tt := range tests {
		assert.Equal(t, FoldKey(tt.a), FoldKey(tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestFoldKey_DistinctNames(t *testing.T) {
	assert.NotEqual(t, FoldKey("Buzz"), FoldKey("Buzzz"))
	assert.NotEqual(t, FoldKey("Roc3"), FoldKey("Roc"))
}

func TestFoldDiacritics(t *testing.T) {
	assert.Equal(t, "fortael mere om dem", FoldDiacritics("Fortæl mere om dem"))
	assert.Equal(t, "ovet", FoldDiacritics("øvet"))
	assert.Equal(t, "begynder", FoldDiacritics("Begynder"))
}
