// Package risk wraps a pre-trained, probability-calibrated risk classifier.
// The model artifact is frozen at load time: inference is pure arithmetic
// over an aligned feature vector, so a single Model is safe for concurrent
// reads across requests.
package risk

import (
	"math"
)

// Level is the discretized risk tier shown to the user.
type Level string

const (
	LevelLow    Level = "Low risk"
	LevelMedium Level = "Medium risk"
	LevelHigh   Level = "High risk"
)

// Fixed probability thresholds for tier discretization.
const (
	ThresholdMedium = 0.33
	ThresholdHigh   = 0.66
)

// LevelFromProbability maps a calibrated probability to its tier.
func LevelFromProbability(p float64) Level {
	switch {
	case p < ThresholdMedium:
		return LevelLow
	case p < ThresholdHigh:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Badge returns the UI badge tag for a tier.
func (l Level) Badge() string {
	switch l {
	case LevelLow:
		return "text-bg-success"
	case LevelMedium:
		return "text-bg-warning"
	default:
		return "text-bg-danger"
	}
}

// Assessment is an immutable risk classification derived from one profile.
type Assessment struct {
	Probability float64  `json:"score"`
	Level       Level    `json:"level"`
	Badge       string   `json:"badge"`
	Reasons     []string `json:"reasons"`
}

// Artifact is the serialized calibrated classifier: a robust-scaled linear
// model with Platt calibration on the decision value. All vectors are in
// trained column order and must have equal length.
type Artifact struct {
	Version   string    `msgpack:"version"`
	Center    []float64 `msgpack:"center"`
	Scale     []float64 `msgpack:"scale"`
	Weights   []float64 `msgpack:"weights"`
	Intercept float64   `msgpack:"intercept"`
	CalibA    float64   `msgpack:"calib_a"`
	CalibB    float64   `msgpack:"calib_b"`
}

// Model is a loaded, frozen classifier plus its column schema.
type Model struct {
	columns  []string
	artifact Artifact
}

// NewModel constructs a model from an artifact and its ordered column schema.
// Returns nil when the schema is empty or does not match the artifact vectors.
func NewModel(artifact Artifact, columns []string) *Model {
	n := len(columns)
	if n == 0 || len(artifact.Center) != n || len(artifact.Scale) != n || len(artifact.Weights) != n {
		return nil
	}
	return &Model{columns: columns, artifact: artifact}
}

// Columns returns the trained feature schema in order.
func (m *Model) Columns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// Align builds the ordered feature vector for inference. Any expected column
// missing from the input is filled with the neutral default 0.
func (m *Model) Align(features map[string]float64) []float64 {
	row := make([]float64, len(m.columns))
	for i, col := range m.columns {
		row[i] = features[col]
	}
	return row
}

// PredictRisk returns the calibrated probability of "high risk" in [0, 1].
// Same input always yields the same probability.
func (m *Model) PredictRisk(features map[string]float64) float64 {
	row := m.Align(features)

	decision := m.artifact.Intercept
	for i, v := range row {
		scale := m.artifact.Scale[i]
		if scale == 0 {
			scale = 1
		}
		decision += m.artifact.Weights[i] * ((v - m.artifact.Center[i]) / scale)
	}

	// Platt scaling: p = 1 / (1 + exp(A*f + B))
	p := 1.0 / (1.0 + math.Exp(m.artifact.CalibA*decision+m.artifact.CalibB))

	return math.Min(1, math.Max(0, p))
}
