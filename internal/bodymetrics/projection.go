package bodymetrics

const (
	// DefaultKcalPerKG is the conventional 7700 kcal ~ 1 kg of adipose
	// tissue approximation. It is a rule of thumb, not physical law, so
	// it stays overridable through configuration.
	DefaultKcalPerKG = 7700.0

	// DefaultMaintenanceThresholdKG is the weekly change magnitude below
	// which a deficit or surplus is reported as maintenance rather than
	// a trend.
	DefaultMaintenanceThresholdKG = 0.05
)

// Projector converts a daily calorie surplus or deficit into an expected
// weekly weight change.
type Projector struct {
	KcalPerKG              float64
	MaintenanceThresholdKG float64
}

// NewProjector returns a Projector with the conventional constants.
func NewProjector() Projector {
	return Projector{
		KcalPerKG:              DefaultKcalPerKG,
		MaintenanceThresholdKG: DefaultMaintenanceThresholdKG,
	}
}

// WeeklyChangeKG projects the weekly weight change implied by eating
// target calories against a given TDEE. Negative means loss.
func (p Projector) WeeklyChangeKG(tdee, targetCalories int) float64 {
	return float64(targetCalories-tdee) * 7 / p.KcalPerKG
}

// IsMaintenance reports whether a weekly change is too small to call a
// trend.
func (p Projector) IsMaintenance(weeklyChangeKG float64) bool {
	if weeklyChangeKG < 0 {
		weeklyChangeKG = -weeklyChangeKG
	}
	return weeklyChangeKG < p.MaintenanceThresholdKG
}
