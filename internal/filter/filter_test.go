package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/model"
)

var (
	leopard    = model.DiscRecord{Name: "Leopard", Manufacturer: "Innova", Speed: 6, Glide: 5, Turn: -2, Fade: 1}
	destroyer  = model.DiscRecord{Name: "Destroyer", Manufacturer: "Innova", Speed: 12, Glide: 5, Turn: -1, Fade: 3}
	roadrunner = model.DiscRecord{Name: "Roadrunner", Manufacturer: "Innova", Speed: 9, Glide: 5, Turn: -4, Fade: 1}
	volt       = model.DiscRecord{Name: "Volt", Manufacturer: "MVP", Speed: 8, Glide: 5, Turn: -0.5, Fade: 2}
	aviar      = model.DiscRecord{Name: "Aviar", Manufacturer: "Innova", Speed: 2, Glide: 3, Turn: 0, Fade: 1}
)

func speedIntent(low, high int) model.QueryIntent {
	return model.QueryIntent{SpeedRange: &model.SpeedRange{Low: low, High: high}}
}

func TestFilter_SpeedRange(t *testing.T) {
	th := model.DefaultThresholds()

	assert.Empty(t, Filter([]model.DiscRecord{leopard, destroyer}, speedIntent(7, 9), th))
	assert.Equal(t, []model.DiscRecord{roadrunner}, Filter([]model.DiscRecord{roadrunner}, speedIntent(7, 9), th))
}

func TestFilter_StableOrderAndNoMutation(t *testing.T) {
	th := model.DefaultThresholds()
	input := []model.DiscRecord{roadrunner, leopard, volt, destroyer}
	before := append([]model.DiscRecord(nil), input...)

	got := Filter(input, speedIntent(7, 9), th)

	assert.Equal(t, []model.DiscRecord{roadrunner, volt}, got)
	assert.Equal(t, before, input)
}

func TestFilter_NoConstraintsKeepsAll(t *testing.T) {
	input := []model.DiscRecord{aviar, destroyer}
	assert.Equal(t, input, Filter(input, model.QueryIntent{}, model.DefaultThresholds()))
	assert.Empty(t, Filter(nil, speedIntent(1, 15), model.DefaultThresholds()))
}

func TestFilter_Category(t *testing.T) {
	th := model.DefaultThresholds()
	input := []model.DiscRecord{aviar, leopard, volt, destroyer}

	intent := model.QueryIntent{CategoryHint: model.CategoryFairwayDriver}
	assert.Equal(t, []model.DiscRecord{volt}, Filter(input, intent, th))

	intent = model.QueryIntent{CategoryHint: model.CategoryPutter}
	assert.Equal(t, []model.DiscRecord{aviar}, Filter(input, intent, th))

	custom := model.Thresholds{PutterMax: 3, MidrangeMax: 8, FairwayMax: 10}
	intent = model.QueryIntent{CategoryHint: model.CategoryMidrange}
	assert.Equal(t, []model.DiscRecord{leopard, volt}, Filter(input, intent, custom))
}

func TestFilter_SpeedAndCategory(t *testing.T) {
	th := model.DefaultThresholds()
	intent := speedIntent(6, 9)
	intent.CategoryHint = model.CategoryFairwayDriver

	assert.Equal(t, []model.DiscRecord{roadrunner, volt},
		Filter([]model.DiscRecord{leopard, roadrunner, volt}, intent, th))
}

func TestPartition_Reasons(t *testing.T) {
	th := model.DefaultThresholds()
	intent := speedIntent(7, 9)
	intent.CategoryHint = model.CategoryFairwayDriver

	kept, rejected := Partition([]model.DiscRecord{leopard, volt, destroyer}, intent, th)

	assert.Equal(t, []model.DiscRecord{volt}, kept)
	require.Len(t, rejected, 2)
	assert.Equal(t, "Leopard", rejected[0].Name)
	assert.Equal(t, ReasonSpeed, rejected[0].Reason)
	assert.Equal(t, "speed 6 outside 7-9", rejected[0].Detail)
	assert.Equal(t, "Destroyer", rejected[1].Name)

	_, rejected = Partition([]model.DiscRecord{leopard}, model.QueryIntent{CategoryHint: model.CategoryPutter}, th)
	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonCategory, rejected[0].Reason)
}

func TestAllows(t *testing.T) {
	th := model.DefaultThresholds()
	assert.True(t, Allows(volt, speedIntent(8, 8), th))
	assert.False(t, Allows(volt, speedIntent(9, 12), th))
}

// Every output disc is in range and no in-range disc is dropped
func TestFilter_CatalogProperty(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	all := c.All()

	for low := 1; low <= 14; low++ {
		for high := low; high <= 14; high++ {
			got := Filter(all, speedIntent(low, high), c.Thresholds())

			kept := make(map[string]bool, len(got))
			for _, d := range got {
				assert.GreaterOrEqual(t, d.Speed, float64(low), d.Name)
				assert.LessOrEqual(t, d.Speed, float64(high), d.Name)
				kept[d.Name] = true
			}
			for _, d := range all {
				if d.Speed >= float64(low) && d.Speed <= float64(high) {
					assert.True(t, kept[d.Name], "%s dropped from %d-%d", d.Name, low, high)
				}
			}
		}
	}
}
