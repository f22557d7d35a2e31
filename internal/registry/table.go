package registry

import (
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/Dixter999/agentmux/pkg/models"
)

// tableFile is the on-disk shape of the capability table.
type tableFile struct {
	Agents []tableEntry `yaml:"agents"`
}

// tableEntry is one agent profile as written in YAML. Durations are given
// in seconds so table authors do not need Go duration syntax.
type tableEntry struct {
	ID                string             `yaml:"id"`
	Name              string             `yaml:"name"`
	Backend           string             `yaml:"backend"`
	Model             string             `yaml:"model"`
	Strengths         map[string]float64 `yaml:"strengths"`
	Characteristics   []string           `yaml:"characteristics"`
	Temperature       float64            `yaml:"temperature"`
	MaxTokens         int                `yaml:"max_tokens"`
	TimeBudgetSeconds int                `yaml:"time_budget_seconds"`
	SystemHint        string             `yaml:"system_hint"`
	CostIn            float64            `yaml:"cost_per_mtokens_in"`
	CostOut           float64            `yaml:"cost_per_mtokens_out"`
	MaxContextTokens  int                `yaml:"max_context_tokens"`
	Substitutes       []string           `yaml:"substitutes"`
	ComplementaryWith []string           `yaml:"complementary_with"`
	IncompatibleWith  []string           `yaml:"incompatible_with"`
	CollabAffinity    map[string]float64 `yaml:"collab_affinity"`
}

// parseTable decodes the YAML capability table into validated profiles.
func parseTable(data []byte) (map[string]*models.AgentProfile, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(file.Agents) == 0 {
		return nil, fmt.Errorf("capability table has no agents")
	}

	profiles := make(map[string]*models.AgentProfile, len(file.Agents))
	for i, entry := range file.Agents {
		if entry.ID == "" {
			return nil, fmt.Errorf("agent %d: missing id", i)
		}
		if _, dup := profiles[entry.ID]; dup {
			return nil, fmt.Errorf("agent %q: duplicate id", entry.ID)
		}
		p, err := entry.toProfile()
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", entry.ID, err)
		}
		profiles[entry.ID] = p
	}
	return profiles, nil
}

func (e tableEntry) toProfile() (*models.AgentProfile, error) {
	strengths := make(map[models.TaskKind]float64, len(e.Strengths))
	for kind, affinity := range e.Strengths {
		k := models.TaskKind(kind)
		if !k.Valid() {
			return nil, fmt.Errorf("unknown task kind %q", kind)
		}
		if affinity < 0 || affinity > 1 {
			return nil, fmt.Errorf("strength for %q out of range: %v", kind, affinity)
		}
		strengths[k] = affinity
	}

	chars := make([]models.Characteristic, 0, len(e.Characteristics))
	for _, c := range e.Characteristics {
		mc := models.Characteristic(c)
		if !mc.Valid() {
			return nil, fmt.Errorf("unknown characteristic %q", c)
		}
		chars = append(chars, mc)
	}

	return &models.AgentProfile{
		ID:              e.ID,
		Name:            e.Name,
		Backend:         e.Backend,
		Model:           e.Model,
		Strengths:       strengths,
		Characteristics: chars,
		BaseConfig: models.AgentConfig{
			Temperature: e.Temperature,
			MaxTokens:   e.MaxTokens,
			TimeBudget:  time.Duration(e.TimeBudgetSeconds) * time.Second,
			SystemHint:  e.SystemHint,
		}.Clip(),
		CostPerMTokensIn:  e.CostIn,
		CostPerMTokensOut: e.CostOut,
		MaxContextTokens:  e.MaxContextTokens,
		Substitutes:       e.Substitutes,
		ComplementaryWith: e.ComplementaryWith,
		IncompatibleWith:  e.IncompatibleWith,
		CollabAffinity:    e.CollabAffinity,
	}, nil
}
