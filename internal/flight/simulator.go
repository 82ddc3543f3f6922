// Package flight turns flight numbers into an approximate trajectory.
//
// The model is a fitted curve, not a physics simulation. It is deterministic
// and has no state.
package flight

import (
	"fmt"
	"math"

	"github.com/ppiankov/findmindisc/internal/model"
)

const feetToMeters = 0.3048

// Fade onset as a fraction of the flight
const fadeOnset = 0.4

// Phase boundaries as a fraction of the flight
const (
	turnPhaseEnd  = fadeOnset
	glidePhaseEnd = 0.7
)

type armProfile struct {
	distance float64
	turn     float64
	points   int
}

var armProfiles = map[model.ArmSpeed]armProfile{
	model.ArmSlow:   {distance: 0.88, turn: 0.62, points: 14},
	model.ArmNormal: {distance: 1.00, turn: 1.00, points: 18},
	model.ArmFast:   {distance: 1.05, turn: 1.80, points: 22},
}

// Options tweaks a simulation
type Options struct {
	Throw model.ThrowType // default backhand
}

// BaseDistanceM is the expected normal-arm distance of a disc in meters
func BaseDistanceM(speed, glide float64) float64 {
	return (180 + speed*18 + glide*8) * feetToMeters
}

// Simulate returns the backhand flight path of d at the given arm speed
func Simulate(d model.DiscRecord, arm model.ArmSpeed) []model.TrajectoryPoint {
	return SimulateWith(d, arm, Options{})
}

// SimulateWith returns the flight path of d with explicit options.
// Unknown arm speeds are treated as normal.
func SimulateWith(d model.DiscRecord, arm model.ArmSpeed, opts Options) []model.TrajectoryPoint {
	p, ok := armProfiles[arm]
	if !ok {
		p = armProfiles[model.ArmNormal]
	}
	distance := BaseDistanceM(d.Speed, d.Glide) * p.distance
	return trace(d, distance, p.turn, p.points, opts)
}

// SimulateAll returns the slow, normal and fast paths of d
func SimulateAll(d model.DiscRecord, opts Options) map[model.ArmSpeed][]model.TrajectoryPoint {
	out := make(map[model.ArmSpeed][]model.TrajectoryPoint, len(model.ArmSpeeds))
	for _, arm := range model.ArmSpeeds {
		out[arm] = SimulateWith(d, arm, opts)
	}
	return out
}

// ArmFactor relates a thrower's distance to what the disc is built for
type ArmFactor struct {
	Factor       float64 // 0.5 (very slow) to 1.2 (pro)
	DistanceMult float64
	TurnMult     float64
	ExpectedM    float64
}

// CalculateArmFactor fits the turn response to a thrower's actual distance.
// Turn grows linearly below the disc's expected distance and four times as
// fast above it.
func CalculateArmFactor(throwM, speed, glide float64) ArmFactor {
	expected := BaseDistanceM(speed, glide)
	factor := math.Max(0.5, math.Min(1.2, throwM/expected))

	turn := 0.4 + factor*0.6
	if factor > 1 {
		turn = 1 + (factor-1)*4
	}

	return ArmFactor{
		Factor:       factor,
		DistanceMult: 0.7 + factor*0.3,
		TurnMult:     turn,
		ExpectedM:    expected,
	}
}

// SimulatePersonal returns a path that lands at the thrower's own distance
func SimulatePersonal(d model.DiscRecord, throwM float64, opts Options) ([]model.TrajectoryPoint, error) {
	if throwM <= 0 {
		return nil, fmt.Errorf("throw distance must be positive, got %v", throwM)
	}
	af := CalculateArmFactor(throwM, d.Speed, d.Glide)
	return trace(d, throwM, af.TurnMult, armProfiles[model.ArmNormal].points, opts), nil
}

func trace(d model.DiscRecord, distance, turnMult float64, n int, opts Options) []model.TrajectoryPoint {
	fadeMult := 1.0
	if opts.Throw == model.ThrowForehand {
		fadeMult = 1.18
	}

	points := make([]model.TrajectoryPoint, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)

		forward := distance * (1 - math.Pow(1-t, 1.8))

		lateral := d.Turn * 0.37 * turnMult * math.Sin(t*math.Pi*0.75)
		if t > fadeOnset {
			s := (t - fadeOnset) / (1 - fadeOnset)
			lateral += d.Fade * fadeMult * 0.48 * math.Pow(s, 1.5)
		}
		if opts.Throw == model.ThrowForehand {
			lateral = -lateral
		}

		points[i] = model.TrajectoryPoint{
			Distance: round(forward, 1),
			Lateral:  round(lateral, 3) + 0, // -0 becomes 0
			Phase:    phaseAt(t),
		}
	}
	return points
}

func phaseAt(t float64) model.FlightPhase {
	switch {
	case t <= turnPhaseEnd:
		return model.PhaseTurn
	case t <= glidePhaseEnd:
		return model.PhaseGlide
	default:
		return model.PhaseFade
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Stats summarises a path. An empty path gives zero stats.
func Stats(path []model.TrajectoryPoint) model.FlightStats {
	if len(path) == 0 {
		return model.FlightStats{}
	}
	last := path[len(path)-1]
	maxTurn := path[0].Lateral
	for _, p := range path[1:] {
		if p.Lateral < maxTurn {
			maxTurn = p.Lateral
		}
	}
	return model.FlightStats{
		MaxDistanceM: last.Distance,
		MaxTurnM:     maxTurn,
		FinalLateral: last.Lateral,
		FadeAmountM:  round(last.Lateral-maxTurn, 3),
	}
}

// RequiredArmSpeed estimates the throwing distance a disc speed needs:
// about ten meters per speed unit, twelve to get full flight.
func RequiredArmSpeed(speed float64) model.ArmRequirement {
	return model.ArmRequirement{
		MinDistanceM:         int(math.Round(speed * 10)),
		RecommendedDistanceM: int(math.Round(speed * 12)),
	}
}
