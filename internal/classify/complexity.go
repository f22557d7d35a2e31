package classify

import (
	"strings"

	"github.com/Dixter999/agentmux/internal/scan"
	"github.com/Dixter999/agentmux/pkg/models"
)

// complexityEstimate is the six-dimension breakdown plus the weighted total.
type complexityEstimate struct {
	cognitive     float64
	computational float64
	technical     float64
	temporal      float64
	architectural float64
	integration   float64

	// overall is the weighted sum, clamped to [0, 1].
	overall float64
	// tier is the thresholded complexity tier.
	tier models.Complexity
	// risk is the thresholded blast-radius tier.
	risk models.Risk
}

// Thresholds between complexity tiers on the overall score.
const (
	moderateThreshold = 0.25
	complexThreshold  = 0.50
	criticalThreshold = 0.75
)

// estimateComplexity runs the six-dimension weighted estimation. Each
// dimension sums its keyword factors and is then adjusted by contextual
// signals from the linguistic and file scans.
func estimateComplexity(text string, ling linguisticScan, files []scan.FileInfo, weights DimensionWeights) complexityEstimate {
	lower := strings.ToLower(text)

	est := complexityEstimate{
		cognitive:     matchFactors(lower, cognitiveFactors),
		computational: matchFactors(lower, computationalFactors),
		technical:     matchFactors(lower, technicalFactors),
		temporal:      matchFactors(lower, temporalFactors),
		architectural: matchFactors(lower, architecturalFactors),
		integration:   matchFactors(lower, integrationFactors),
	}

	// Long, winding requests are cognitively harder to satisfy.
	if ling.meanSentenceLength > 25 {
		est.cognitive += 0.15
	}
	if ling.wordCount > 200 {
		est.cognitive += 0.1
	}

	// Many files or a large effective-line footprint push the technical
	// and architectural dimensions up.
	totalLines := 0
	for _, fi := range files {
		totalLines += fi.EffectiveLines
	}
	switch {
	case len(files) > 10:
		est.architectural += 0.25
		est.technical += 0.15
	case len(files) > 5:
		est.architectural += 0.15
		est.technical += 0.1
	case len(files) > 1:
		est.technical += 0.05
	}
	switch {
	case totalLines > 5000:
		est.computational += 0.2
		est.cognitive += 0.15
	case totalLines > 1000:
		est.computational += 0.1
		est.cognitive += 0.05
	}

	// A request touching several task kinds at once spans more concerns.
	if len(ling.kindHits) >= 3 {
		est.integration += 0.15
	}

	est.overall = clamp01(weights.Cognitive*clamp01(est.cognitive) +
		weights.Computational*clamp01(est.computational) +
		weights.Technical*clamp01(est.technical) +
		weights.Temporal*clamp01(est.temporal) +
		weights.Architectural*clamp01(est.architectural) +
		weights.Integration*clamp01(est.integration))

	est.tier = tierForScore(est.overall)
	est.risk = riskForScore(est.overall, ling)

	return est
}

// tierForScore thresholds the overall score into a complexity tier.
func tierForScore(score float64) models.Complexity {
	switch {
	case score >= criticalThreshold:
		return models.ComplexityCritical
	case score >= complexThreshold:
		return models.ComplexityComplex
	case score >= moderateThreshold:
		return models.ComplexityModerate
	default:
		return models.ComplexitySimple
	}
}

// riskForScore derives the blast-radius tier from the overall score and the
// security signal: security-sensitive work always carries elevated risk.
func riskForScore(score float64, ling linguisticScan) models.Risk {
	risk := models.RiskLow
	switch {
	case score >= criticalThreshold:
		risk = models.RiskCritical
	case score >= complexThreshold:
		risk = models.RiskHigh
	case score >= moderateThreshold:
		risk = models.RiskMedium
	}

	for _, c := range ling.characteristics {
		if c == models.CharSecuritySensitive && !risk.AtLeast(models.RiskHigh) {
			risk = models.RiskHigh
		}
	}
	return risk
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
