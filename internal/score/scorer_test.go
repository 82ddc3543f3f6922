package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/findmindisc/internal/model"
)

func signalTypes(signals []model.Signal) []model.SignalType {
	types := make([]model.SignalType, 0, len(signals))
	for _, s := range signals {
		types = append(types, s.Type)
	}
	return types
}

func cleanTurn() *model.Recommendation {
	return &model.Recommendation{
		Discs: []model.RecommendedDisc{{Disc: model.DiscRecord{Name: "Volt"}}},
	}
}

func TestAssess_CleanTurnHasNoSignals(t *testing.T) {
	assert.Empty(t, Assess(cleanTurn()))
	assert.Nil(t, Assess(nil))
}

func TestAssess_HallucinatedNumbers(t *testing.T) {
	rec := cleanTurn()
	rec.Corrections = []model.Correction{
		{Disc: "Photon", Field: "speed", Original: "13", Corrected: "11"},
	}

	signals := Assess(rec)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalHallucinatedNumbers, signals[0].Type)
	assert.Equal(t, model.SeverityWarning, signals[0].Severity)
	assert.Equal(t, 1, signals[0].Data["corrections"])

	rec.Corrections = append(rec.Corrections, model.Correction{Disc: "Volt", Field: "turn"})
	signals = Assess(rec)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SeverityCritical, signals[0].Severity, "wrong numbers on several discs")
	assert.Equal(t, []string{"Photon", "Volt"}, signals[0].Data["discs"])
}

func TestAssess_ManufacturerSeparateFromNumbers(t *testing.T) {
	rec := cleanTurn()
	rec.Corrections = []model.Correction{
		{Disc: "Volt", Field: model.FieldManufacturer, Original: "Innova", Corrected: "MVP"},
	}

	signals := Assess(rec)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalManufacturerFix, signals[0].Type)
	assert.Equal(t, []string{"Volt: Innova -> MVP"}, signals[0].Data["fixes"])
}

func TestAssess_ConstraintViolation(t *testing.T) {
	rec := cleanTurn()
	rec.Intent = model.QueryIntent{SpeedRange: &model.SpeedRange{Low: 7, High: 9}}
	rec.Rejected = []model.Rejection{{Name: "Destroyer", Reason: "speed_out_of_range"}}

	signals := Assess(rec)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalConstraintViolation, signals[0].Type)
	assert.Equal(t, model.SeverityWarning, signals[0].Severity)
	assert.Equal(t, "7-9", signals[0].Data["speed_range"])
}

func TestAssess_EverythingRejected(t *testing.T) {
	rec := &model.Recommendation{
		Rejected:   []model.Rejection{{Name: "Destroyer", Reason: "speed_out_of_range"}},
		Unresolved: []string{"Firefly"},
		Skipped:    []model.SkippedFragment{{Disc: "Volt", Reason: "expected 4 flight numbers, found 3"}},
	}

	signals := Assess(rec)
	assert.Equal(t, []model.SignalType{
		model.SignalConstraintViolation,
		model.SignalUnresolvedReference,
		model.SignalNoCandidates,
		model.SignalSkippedFragment,
	}, signalTypes(signals))
	assert.Equal(t, model.SeverityCritical, signals[0].Severity)
	assert.Equal(t, model.SeverityInfo, signals[3].Severity)
}

func TestAssess_NeverChangesDiscs(t *testing.T) {
	rec := cleanTurn()
	rec.Corrections = []model.Correction{{Disc: "Volt", Field: "speed"}}
	before := rec.DiscNames()

	_ = Assess(rec)
	assert.Equal(t, before, rec.DiscNames())
	assert.Empty(t, rec.Signals, "Assess returns signals, the caller attaches them")
}
