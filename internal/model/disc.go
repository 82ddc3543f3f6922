package model

import (
	"fmt"
	"strconv"
)

// DiscRecord is one physical disc model with its canonical flight numbers
type DiscRecord struct {
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Speed        float64  `json:"speed"`
	Glide        float64  `json:"glide"`
	Turn         float64  `json:"turn"`
	Fade         float64  `json:"fade"`
	Aliases      []string `json:"aliases,omitempty"`
}

// Category classifies a disc by speed. It is never stored as a source of truth.
type Category string

const (
	CategoryPutter         Category = "Putter"
	CategoryMidrange       Category = "Midrange"
	CategoryFairwayDriver  Category = "Fairway Driver"
	CategoryDistanceDriver Category = "Distance Driver"
)

// Categories lists every category in ascending speed order
var Categories = []Category{
	CategoryPutter,
	CategoryMidrange,
	CategoryFairwayDriver,
	CategoryDistanceDriver,
}

// Thresholds are the inclusive upper speed bounds of the first three categories.
// Anything faster than FairwayMax is a distance driver.
type Thresholds struct {
	PutterMax   float64 `json:"putter_max" yaml:"putter_max" mapstructure:"putter_max"`
	MidrangeMax float64 `json:"midrange_max" yaml:"midrange_max" mapstructure:"midrange_max"`
	FairwayMax  float64 `json:"fairway_max" yaml:"fairway_max" mapstructure:"fairway_max"`
}

// DefaultThresholds returns the speed boundaries observed in the disc dataset
func DefaultThresholds() Thresholds {
	return Thresholds{
		PutterMax:   3,
		MidrangeMax: 6,
		FairwayMax:  9,
	}
}

// Validate checks that the thresholds are positive and strictly increasing
func (t Thresholds) Validate() error {
	if t.PutterMax <= 0 {
		return fmt.Errorf("putter_max must be positive, got %v", t.PutterMax)
	}
	if t.MidrangeMax <= t.PutterMax {
		return fmt.Errorf("midrange_max (%v) must be greater than putter_max (%v)", t.MidrangeMax, t.PutterMax)
	}
	if t.FairwayMax <= t.MidrangeMax {
		return fmt.Errorf("fairway_max (%v) must be greater than midrange_max (%v)", t.FairwayMax, t.MidrangeMax)
	}
	return nil
}

// Classify maps a speed to its category
func (t Thresholds) Classify(speed float64) Category {
	switch {
	case speed <= t.PutterMax:
		return CategoryPutter
	case speed <= t.MidrangeMax:
		return CategoryMidrange
	case speed <= t.FairwayMax:
		return CategoryFairwayDriver
	default:
		return CategoryDistanceDriver
	}
}

// SpeedBounds returns the inclusive speed interval covered by a category.
// The distance driver upper bound is open-ended and reported as 15.
func (t Thresholds) SpeedBounds(c Category) (low, high float64) {
	switch c {
	case CategoryPutter:
		return 1, t.PutterMax
	case CategoryMidrange:
		return t.PutterMax + 1, t.MidrangeMax
	case CategoryFairwayDriver:
		return t.MidrangeMax + 1, t.FairwayMax
	default:
		return t.FairwayMax + 1, 15
	}
}

// FlightNumbers renders speed/glide/turn/fade in the canonical slash format
func (d DiscRecord) FlightNumbers() string {
	return FormatNumber(d.Speed) + "/" + FormatNumber(d.Glide) + "/" + FormatNumber(d.Turn) + "/" + FormatNumber(d.Fade)
}

// Field returns the value of a named flight number
func (d DiscRecord) Field(f FlightField) float64 {
	switch f {
	case FieldSpeed:
		return d.Speed
	case FieldGlide:
		return d.Glide
	case FieldTurn:
		return d.Turn
	default:
		return d.Fade
	}
}

// Stability describes how a disc behaves for a right-hand backhand throw
type Stability string

const (
	StabilityUnderstable Stability = "understable"
	StabilityStable      Stability = "stable"
	StabilityOverstable  Stability = "overstable"
)

// Stability derives the qualitative stability from turn and fade
func (d DiscRecord) Stability() Stability {
	net := d.Turn + d.Fade
	switch {
	case d.Turn <= -2 || net < 0:
		return StabilityUnderstable
	case net >= 2 || d.Turn > 0:
		return StabilityOverstable
	default:
		return StabilityStable
	}
}

// FlightField names one of the four flight numbers
type FlightField string

const (
	FieldSpeed FlightField = "speed"
	FieldGlide FlightField = "glide"
	FieldTurn  FlightField = "turn"
	FieldFade  FlightField = "fade"
)

// FlightFields is the canonical order of the flight numbers
var FlightFields = []FlightField{FieldSpeed, FieldGlide, FieldTurn, FieldFade}

// FormatNumber renders a flight number without trailing zeros (11, -0.5, 2.5)
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
