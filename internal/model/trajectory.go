package model

import "fmt"

// TrajectoryPoint is one sample of a simulated flight, in meters
type TrajectoryPoint struct {
	Distance float64     `json:"distance"` // Forward distance along the fairway
	Lateral  float64     `json:"lateral"`  // Negative = right for a right-hand backhand
	Phase    FlightPhase `json:"phase"`
}

// FlightPhase labels the dominant aerodynamic regime of a sample
type FlightPhase string

const (
	PhaseTurn  FlightPhase = "turn"
	PhaseGlide FlightPhase = "glide"
	PhaseFade  FlightPhase = "fade"
)

// ArmSpeed is a discrete throwing-power class
type ArmSpeed string

const (
	ArmSlow   ArmSpeed = "slow"
	ArmNormal ArmSpeed = "normal"
	ArmFast   ArmSpeed = "fast"

	// ArmPersonal is a path fitted to the thrower's own distance
	ArmPersonal ArmSpeed = "personal"
)

// ArmSpeeds lists the classes from least to most power
var ArmSpeeds = []ArmSpeed{ArmSlow, ArmNormal, ArmFast}

// ParseArmSpeed parses an arm speed class name
func ParseArmSpeed(s string) (ArmSpeed, error) {
	switch ArmSpeed(s) {
	case ArmSlow, ArmNormal, ArmFast:
		return ArmSpeed(s), nil
	case "":
		return ArmNormal, nil
	default:
		return "", fmt.Errorf("unknown arm speed %q (supported: slow, normal, fast)", s)
	}
}

// ThrowType is the throwing technique
type ThrowType string

const (
	ThrowBackhand ThrowType = "backhand"
	ThrowForehand ThrowType = "forehand"
)

// FlightStats summarises a trajectory
type FlightStats struct {
	MaxDistanceM float64 `json:"max_distance_m"`
	MaxTurnM     float64 `json:"max_turn_m"`     // Most negative lateral offset
	FinalLateral float64 `json:"final_lateral_m"` // Lateral offset at landing
	FadeAmountM  float64 `json:"fade_amount_m"`  // Final minus max turn
}

// ArmRequirement estimates the throwing distance a disc speed needs
type ArmRequirement struct {
	MinDistanceM         int `json:"min_distance_m"`
	RecommendedDistanceM int `json:"recommended_distance_m"`
}
