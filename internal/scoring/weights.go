// Package scoring ranks candidate agents against a TaskProfile using the
// capability registry, live health, and the rolling performance history.
package scoring

import "fmt"

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-6

// Weights are the five component weights of the total score.
type Weights struct {
	// Specialization weighs task-kind and characteristic alignment.
	Specialization float64
	// History weighs trailing-window performance.
	History float64
	// CharacteristicsFit weighs complexity and context handling.
	CharacteristicsFit float64
	// Availability weighs live health.
	Availability float64
	// Cost weighs estimated cost against the budget ceiling.
	Cost float64
}

// DefaultWeights returns the fixed default component weights.
func DefaultWeights() Weights {
	return Weights{
		Specialization:     0.40,
		History:            0.25,
		CharacteristicsFit: 0.15,
		Availability:       0.10,
		Cost:               0.10,
	}
}

// Sum returns the total of all five weights.
func (w Weights) Sum() float64 {
	return w.Specialization + w.History + w.CharacteristicsFit + w.Availability + w.Cost
}

// Validate returns an error unless the weights sum to 1.0 within tolerance.
func (w Weights) Validate() error {
	sum := w.Sum()
	if sum < 1-weightTolerance || sum > 1+weightTolerance {
		return fmt.Errorf("scoring weights sum to %.6f, want 1.0", sum)
	}
	return nil
}
