package classify

import (
	"fmt"
	"time"

	"github.com/Dixter999/agentmux/internal/scan"
	"github.com/Dixter999/agentmux/pkg/models"
)

// Request is the raw input to classification: the request text plus the
// optional file attachments and project root supplied by the front-end.
type Request struct {
	// Text is the work request.
	Text string
	// FilePaths lists attached files, possibly empty.
	FilePaths []string
	// ProjectRoot is the project directory, empty when none was given.
	ProjectRoot string
}

// Classifier turns requests into TaskProfiles. Classification is a pure
// function of the request and the attached-file snapshot: identical inputs
// produce identical profiles.
type Classifier struct {
	weights DimensionWeights

	// costPerMTokens is the blended dollar rate used for the advisory
	// cost estimate, before any agent is chosen.
	costPerMTokens float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDimensionWeights overrides the complexity dimension weights.
func WithDimensionWeights(w DimensionWeights) Option {
	return func(c *Classifier) { c.weights = w }
}

// WithBlendedCost overrides the blended per-million-token dollar rate used
// for advisory cost estimates.
func WithBlendedCost(costPerMTokens float64) Option {
	return func(c *Classifier) { c.costPerMTokens = costPerMTokens }
}

// New creates a Classifier. It returns an error when the configured
// dimension weights do not sum to 1.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		weights:        DefaultDimensionWeights(),
		costPerMTokens: 6.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	if sum := c.weights.Sum(); sum < 1-1e-6 || sum > 1+1e-6 {
		return nil, fmt.Errorf("dimension weights sum to %.6f, want 1.0", sum)
	}
	return c, nil
}

// Classify runs the full pipeline: linguistic scan, file/project scan, and
// six-dimension complexity estimation.
func (c *Classifier) Classify(req Request) models.TaskProfile {
	ling := scanText(req.Text)
	files := scan.ScanFiles(req.FilePaths)

	return c.classify(req, ling, files)
}

// ClassifyScanned is Classify with pre-scanned file metadata, used by tests
// and callers that already hold a file snapshot.
func (c *Classifier) ClassifyScanned(req Request, files []scan.FileInfo) models.TaskProfile {
	return c.classify(req, scanText(req.Text), files)
}

func (c *Classifier) classify(req Request, ling linguisticScan, files []scan.FileInfo) models.TaskProfile {
	est := estimateComplexity(req.Text, ling, files, c.weights)

	profile := models.TaskProfile{
		PrimaryKind: models.KindGeneral,
		Complexity:  est.tier,
		Risk:        est.risk,
		FileCount:   len(files),
		Language:    scan.DominantLanguage(files),
	}

	ranked := ling.rankedKinds()
	if len(ranked) > 0 {
		profile.PrimaryKind = ranked[0]
		// Secondaries must carry real signal, not a single stray hit.
		for _, kind := range ranked[1:] {
			if ling.kindHits[kind] >= 2 {
				profile.SecondaryKinds = append(profile.SecondaryKinds, kind)
			}
		}
	}

	profile.Characteristics = append(profile.Characteristics, ling.characteristics...)
	if len(files) > 5 {
		profile.Characteristics = append(profile.Characteristics, models.CharMultiFile)
	}

	profile.EstimatedTokens = c.estimateTokens(ling, files)
	if profile.EstimatedTokens > 60_000 {
		profile.Characteristics = append(profile.Characteristics, models.CharLongContext)
	}
	profile.EstimatedDuration = estimateDuration(est.tier)
	profile.EstimatedCost = float64(profile.EstimatedTokens) / 1_000_000 * c.costPerMTokens

	profile.Confidence = c.confidence(ling, files)

	if projectType := scan.DetectProjectType(req.ProjectRoot); projectType != scan.ProjectUnknown {
		profile.Metadata = map[string]any{"project_type": string(projectType)}
	}

	return profile
}

// estimateTokens projects total token consumption from the request length
// and the effective lines of attached files. Roughly 1.3 tokens per word
// and 12 tokens per effective source line, plus a response allowance
// scaled by how many files the work touches.
func (c *Classifier) estimateTokens(ling linguisticScan, files []scan.FileInfo) int64 {
	tokens := int64(float64(ling.wordCount) * 1.3)
	for _, fi := range files {
		tokens += int64(fi.EffectiveLines) * 12
	}
	tokens += int64(1500 * (1 + len(files)/3))
	return tokens
}

// estimateDuration maps the complexity tier to a projected wall-clock time.
func estimateDuration(tier models.Complexity) time.Duration {
	switch tier {
	case models.ComplexityCritical:
		return 5 * time.Minute
	case models.ComplexityComplex:
		return 3 * time.Minute
	case models.ComplexityModerate:
		return 90 * time.Second
	default:
		return 45 * time.Second
	}
}

// confidence grades the classification. Keyword signal strength sets the
// base; file context raises it because two independent evidence sources
// agree on the work's shape.
func (c *Classifier) confidence(ling linguisticScan, files []scan.FileInfo) float64 {
	conf := 0.35
	switch {
	case ling.totalHits >= 5:
		conf = 0.75
	case ling.totalHits >= 3:
		conf = 0.65
	case ling.totalHits >= 1:
		conf = 0.55
	}
	if len(files) > 0 {
		conf += 0.15
	}
	return clamp01(conf)
}
