package grind

// Settings tune detection, engagement and traversal.
type Settings struct {
	DetectionInterval      float64
	DetectionRadius        float64
	ValidityRadiusFactor   float64
	EndpointTolerance      float64
	MinEngageSpeed         float64
	BaseGrindSpeed         float64
	MaxGrindSpeed          float64
	GrindAcceleration      float64
	MomentumTransferFactor float64
	GravityReduction       float64
	EdgeSnapDistance       float64
	EdgeOffset             float64
	ExitForce              float64
	SteerStrength          float64
	// MaxSteerAngle bounds how far, in degrees, steering turns the
	// direction away from the edge.
	MaxSteerAngle          float64
	SpeedCurveStart        float64
	SpeedCurveDuration     float64
}

func DefaultSettings() Settings {
	return Settings{
		DetectionInterval:      0.1,
		DetectionRadius:        20,
		ValidityRadiusFactor:   1.5,
		EndpointTolerance:      2,
		MinEngageSpeed:         5,
		BaseGrindSpeed:         10,
		MaxGrindSpeed:          30,
		GrindAcceleration:      2,
		MomentumTransferFactor: 0.9,
		GravityReduction:       0.8,
		EdgeSnapDistance:       1,
		EdgeOffset:             0.5,
		ExitForce:              5,
		SteerStrength:          0.5,
		MaxSteerAngle:          30,
		SpeedCurveStart:        0.75,
		SpeedCurveDuration:     5,
	}
}
