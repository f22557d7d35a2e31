package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Dixter999/agentmux/internal/backend"
	"github.com/Dixter999/agentmux/internal/classify"
	"github.com/Dixter999/agentmux/internal/config"
	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/internal/decision"
	"github.com/Dixter999/agentmux/internal/fallback"
	"github.com/Dixter999/agentmux/internal/fault"
	"github.com/Dixter999/agentmux/internal/health"
	"github.com/Dixter999/agentmux/internal/history"
	"github.com/Dixter999/agentmux/internal/prompt"
	"github.com/Dixter999/agentmux/internal/recovery"
	"github.com/Dixter999/agentmux/internal/registry"
	"github.com/Dixter999/agentmux/internal/scan"
	"github.com/Dixter999/agentmux/internal/scoring"
	"github.com/Dixter999/agentmux/internal/telemetry"
	"github.com/Dixter999/agentmux/pkg/models"
)

// pipeline is the fully wired request path: classify, score, decide,
// execute. One pipeline serves one CLI invocation.
type pipeline struct {
	cfg *config.Config

	reg        *registry.Registry
	store      history.Store
	healthMon  *health.Monitor
	detector   *fault.Detector
	cascade    *fallback.Cascade
	recoverer  *recovery.System
	collector  *telemetry.Collector
	classifier *classify.Classifier
	scorer     *scoring.Engine
	decider    *decision.Engine
	renderer   *prompt.Renderer
	dispatcher *backend.Dispatcher
}

// newPipeline wires every collaborator from the resolved configuration.
// Offline runs use the in-memory history store and the scripted transport
// for every backend name.
func newPipeline(cfg *config.Config, offline bool) (*pipeline, error) {
	p := &pipeline{cfg: cfg}

	var err error
	if cfg.Registry.TablePath != "" {
		p.reg, err = registry.Load(cfg.Registry.TablePath)
		if err != nil {
			return nil, fmt.Errorf("loading capability table: %w", err)
		}
		if cfg.Registry.Watch {
			if err := p.reg.Watch(); err != nil {
				log.Printf("[agentmux] table watch disabled: %v", err)
			}
		}
	} else {
		p.reg = registry.LoadDefault()
	}

	if offline {
		p.store = history.NewMemoryStore()
	} else {
		dbPath := cfg.History.DBPath
		if dbPath == "" {
			dbPath = history.DefaultDBPath()
		}
		p.store, err = history.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening history store: %w", err)
		}
	}

	var agentIDs []string
	for _, prof := range p.reg.All() {
		agentIDs = append(agentIDs, prof.ID)
	}
	p.healthMon = health.NewMonitor(agentIDs)

	p.detector = fault.NewDetector(fault.DefaultDetectorConfig())
	p.cascade = fallback.NewCascade(p.reg)
	p.recoverer = recovery.NewSystem(p.detector, p.cascade, p.healthMon)
	p.collector = telemetry.NewCollector(p.detector, p.recoverer, p.healthMon)

	p.classifier, err = classify.New()
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	p.scorer, err = scoring.NewEngine(p.reg, p.healthMon, p.store,
		scoring.WithWeights(cfg.Weights()),
		scoring.WithWindow(cfg.History.WindowSize))
	if err != nil {
		return nil, fmt.Errorf("building scoring engine: %w", err)
	}

	p.decider = decision.NewEngine(p.reg,
		decision.WithThresholds(cfg.Thresholds()),
		decision.WithMaxFallbacks(cfg.Decision.MaxFallbacks))

	p.renderer, err = prompt.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("building prompt renderer: %w", err)
	}

	return p, nil
}

// attachBackends builds the dispatcher. Only commands that execute need
// transports; plan and agents stay key-free.
func (p *pipeline) attachBackends(offline bool) error {
	d, err := buildDispatcher(p.cfg, offline)
	if err != nil {
		return err
	}
	p.dispatcher = d
	return nil
}

// startHealthRefresh kicks off the monitor's background cycle: stale
// error records are pruned and each agent's backend is re-checked for a
// registered transport. Requires attachBackends to have run.
func (p *pipeline) startHealthRefresh(ctx context.Context) {
	p.healthMon.Start(ctx, p.cfg.Health.RefreshInterval, p.checkAgent)
}

// checkAgent reports whether an agent still resolves to a usable
// transport.
func (p *pipeline) checkAgent(_ context.Context, agentID string) error {
	prof := p.reg.Get(agentID)
	if prof == nil {
		return fmt.Errorf("agent %s not in registry", agentID)
	}
	if !p.dispatcher.Has(prof.Backend) {
		return fmt.Errorf("no transport for backend %q", prof.Backend)
	}
	return nil
}

// buildDispatcher registers one transport per configured provider.
func buildDispatcher(cfg *config.Config, offline bool) (*backend.Dispatcher, error) {
	d := backend.NewDispatcher()

	if offline {
		scripted := backend.NewScripted()
		d.Register(scripted)
		for _, name := range []string{"anthropic", "openai", "google"} {
			d.RegisterAs(name, scripted)
		}
		return d, nil
	}

	registered := 0

	anthKey, anthErr := config.APIKeyFor(cfg, "anthropic")
	if anthErr == nil || cfg.Anthropic.UseAWSBedrock {
		b, err := backend.NewAnthropic(backend.AnthropicConfig{
			APIKey:        anthKey,
			UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
		})
		if err != nil {
			return nil, fmt.Errorf("anthropic backend: %w", err)
		}
		d.Register(b)
		registered++
	}

	if key, err := config.APIKeyFor(cfg, "openai"); err == nil {
		b, err := backend.NewOpenAI(key)
		if err != nil {
			return nil, fmt.Errorf("openai backend: %w", err)
		}
		d.Register(b)
		registered++
	}

	if key, err := config.APIKeyFor(cfg, "google"); err == nil {
		b, err := backend.NewGoogle(key)
		if err != nil {
			return nil, fmt.Errorf("google backend: %w", err)
		}
		d.Register(b)
		registered++
	}

	if registered == 0 {
		return nil, fmt.Errorf("no backend configured: set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY, or pass --offline")
	}

	return d, nil
}

// Close releases the pipeline's resources.
func (p *pipeline) Close() {
	if p.reg != nil {
		if err := p.reg.Close(); err != nil {
			log.Printf("[agentmux] closing registry: %v", err)
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			log.Printf("[agentmux] closing history store: %v", err)
		}
	}
}

// buildPlan runs the selection half of the pipeline: classify the request,
// rank the candidates, and build the execution plan.
func (p *pipeline) buildPlan(text string, files []string) (models.TaskProfile, []models.AgentScore, *models.ExecutionPlan, error) {
	req := classify.Request{Text: text, FilePaths: files}

	var profile models.TaskProfile
	if len(files) > 0 {
		profile = p.classifier.ClassifyScanned(req, scan.ScanFiles(files))
	} else {
		profile = p.classifier.Classify(req)
	}

	scores := p.scorer.Rank(profile)
	p.collector.RecordScores(scores)
	if len(scores) == 0 {
		return profile, nil, nil, fmt.Errorf("no agents available for task kind %s", profile.PrimaryKind)
	}

	plan, err := p.decider.Decide(profile, scores)
	if err != nil {
		return profile, scores, nil, fmt.Errorf("building execution plan: %w", err)
	}

	return profile, scores, plan, nil
}

// coordinator builds the execution coordinator, optionally attached to an
// event stream.
func (p *pipeline) coordinator(events chan<- coordinator.Event) *coordinator.Coordinator {
	opts := []coordinator.Option{
		coordinator.WithRevisionRounds(p.cfg.Execution.RevisionRounds),
	}
	if events != nil {
		opts = append(opts, coordinator.WithEvents(events))
	}
	return coordinator.New(
		p.dispatcher, p.reg, p.renderer,
		p.healthMon, telemetry.Fanout(p.store, p.collector),
		p.detector, p.recoverer,
		opts...)
}
