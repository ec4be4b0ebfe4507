package analytics

// RiskTier classifies how likely a population is to fall for phishing.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

const (
	highRiskAbove     = 30.0
	mediumRiskAtLeast = 15.0
)

// Classify maps a click-rate percentage to a risk tier. It is the only
// classifier; department and user rows both go through it.
func Classify(pct float64) RiskTier {
	switch {
	case pct > highRiskAbove:
		return RiskHigh
	case pct >= mediumRiskAtLeast:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Color is the severity hint the rendering layer uses for a tier.
func (t RiskTier) Color() string {
	switch t {
	case RiskHigh:
		return "error"
	case RiskMedium:
		return "warning"
	default:
		return "success"
	}
}
