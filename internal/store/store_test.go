package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/findmindisc/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "corrections.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func turn(id string, corrections ...model.Correction) *model.Recommendation {
	return &model.Recommendation{
		TurnID:    id,
		Query:     "Jeg søger en fairway driver",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Discs: []model.RecommendedDisc{
			{Disc: model.DiscRecord{Name: "Volt"}},
		},
		Corrections: corrections,
	}
}

func TestOpen_MigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.db")

	s, err := Open(path)
	require.NoError(t, err)
	v, err := userVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode;").Scan(&mode))
	assert.Equal(t, "wal", mode)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "reopening an up-to-date database is a no-op")
	require.NoError(t, s.Close())
}

func TestRecord_AndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, turn("01HTURN1",
		model.Correction{Disc: "Volt", Field: "speed", Original: "9", Corrected: "8", Rule: "slash"},
		model.Correction{Disc: "Volt", Field: "turn", Original: "-1", Corrected: "-0.5", Rule: "slash"},
	)))
	require.NoError(t, s.Record(ctx, turn("01HTURN2",
		model.Correction{Disc: "Photon", Field: "speed", Original: "13", Corrected: "11", Rule: "slash"},
	)))
	require.NoError(t, s.Record(ctx, turn("01HTURN3")))

	n, err := s.TurnCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := s.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Photon", all[0].Disc, "newest first")
	assert.Equal(t, "01HTURN2", all[0].TurnID)
	assert.Len(t, all[0].ID, 26)

	volt, err := s.Recent(ctx, "volt", 10)
	require.NoError(t, err)
	require.Len(t, volt, 2)
	for _, c := range volt {
		assert.Equal(t, "Volt", c.Disc)
		assert.Equal(t, 2026, c.CreatedAt.Year())
	}

	limited, err := s.Recent(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecord_DuplicateTurnRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := turn("01HSAME", model.Correction{Disc: "Volt", Field: "speed", Original: "9", Corrected: "8", Rule: "slash"})
	require.NoError(t, s.Record(ctx, rec))
	assert.Error(t, s.Record(ctx, rec))

	all, err := s.Recent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	speed := model.Correction{Disc: "Photon", Field: "speed", Original: "13", Corrected: "11", Rule: "slash"}
	maker := model.Correction{Disc: "Volt", Field: model.FieldManufacturer, Original: "Innova", Corrected: "MVP", Rule: "manufacturer"}
	require.NoError(t, s.Record(ctx, turn("01A", speed, maker)))
	require.NoError(t, s.Record(ctx, turn("01B", speed)))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []FieldStat{
		{Disc: "Photon", Field: "speed", Count: 2},
		{Disc: "Volt", Field: "manufacturer", Count: 1},
	}, stats)
}
