package risk

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// columnsDescriptor mirrors the columns.json schema file written at training
// time. Either key is accepted.
type columnsDescriptor struct {
	Columns      []string `json:"columns"`
	FeatureNames []string `json:"feature_names"`
}

// LoadModel loads the model artifact and column schema from disk.
// Loading is best-effort: a missing or malformed artifact, or an empty
// schema, yields nil rather than an error. The caller converts a nil model
// into a precondition failure only when a plan is actually requested.
func LoadModel(modelPath, columnsPath string, log zerolog.Logger) *Model {
	log = log.With().Str("component", "risk_model").Logger()

	rawCols, err := os.ReadFile(columnsPath)
	if err != nil {
		log.Warn().Err(err).Str("path", columnsPath).Msg("Column schema not available, risk model disabled")
		return nil
	}

	var desc columnsDescriptor
	if err := json.Unmarshal(rawCols, &desc); err != nil {
		log.Warn().Err(err).Str("path", columnsPath).Msg("Failed to parse column schema, risk model disabled")
		return nil
	}

	columns := desc.Columns
	if len(columns) == 0 {
		columns = desc.FeatureNames
	}
	if len(columns) == 0 {
		log.Warn().Str("path", columnsPath).Msg("Column schema is empty, risk model disabled")
		return nil
	}

	rawModel, err := os.ReadFile(modelPath)
	if err != nil {
		log.Warn().Err(err).Str("path", modelPath).Msg("Model artifact not available, risk model disabled")
		return nil
	}

	var artifact Artifact
	if err := msgpack.Unmarshal(rawModel, &artifact); err != nil {
		log.Warn().Err(err).Str("path", modelPath).Msg("Failed to decode model artifact, risk model disabled")
		return nil
	}

	model := NewModel(artifact, columns)
	if model == nil {
		log.Warn().
			Int("columns", len(columns)).
			Int("weights", len(artifact.Weights)).
			Msg("Model artifact does not match column schema, risk model disabled")
		return nil
	}

	log.Info().
		Str("version", artifact.Version).
		Int("features", len(columns)).
		Msg("Risk model loaded")

	return model
}
