// Command modelgen writes a reference risk-model artifact and its column
// schema to disk. The weights approximate a calibrated linear classifier
// trained on synthetic saver profiles; they are good enough for demos and
// for integration tests that need a real artifact on disk.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/microinvest/internal/modules/risk"
)

var columns = []string{
	"age",
	"income",
	"savings_goal",
	"horizon_months",
	"experience_level",
	"risk_attitude",
	"buffer_months",
	"fixed_costs",
	"pension_contrib",
	"tax_estimate",
	"debt_amount",
	"debt_interest",
	"mortgage_interest",
	"cost_sensitivity",
	"sustainable",
}

// Robust-scaler medians and spreads for each column, estimated from the
// synthetic training population.
var centers = []float64{
	40, 3200, 25000, 60, 1, 1, 3, 1400, 150, 600, 2000, 4, 2, 1, 0,
}

var scales = []float64{
	15, 1200, 30000, 48, 1, 1, 3, 600, 150, 400, 8000, 6, 2, 1, 1,
}

// Weights on the scaled features. Risk attitude, short horizons, thin
// buffers, tight margins and expensive debt all push the probability of a
// defensive recommendation up; experience pushes it down.
var weights = []float64{
	0.05,  // age
	-0.30, // income
	0.05,  // savings_goal
	-0.55, // horizon_months
	-0.20, // experience_level
	0.80,  // risk_attitude
	-0.50, // buffer_months
	0.30,  // fixed_costs
	-0.05, // pension_contrib
	0.05,  // tax_estimate
	0.35,  // debt_amount
	0.25,  // debt_interest
	0.05,  // mortgage_interest
	0.0,   // cost_sensitivity
	0.0,   // sustainable
}

func main() {
	// Matches the server's default artifact location under its data dir.
	outDir := flag.String("out", "data", "output directory for model.bin and columns.json")
	flag.Parse()

	if err := run(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "modelgen: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	artifact := risk.Artifact{
		Version:   "1",
		Center:    centers,
		Scale:     scales,
		Weights:   weights,
		Intercept: -0.10,
		CalibA:    -1.0,
		CalibB:    0.0,
	}

	raw, err := msgpack.Marshal(&artifact)
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}

	modelPath := filepath.Join(outDir, "model.bin")
	if err := os.WriteFile(modelPath, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", modelPath, err)
	}

	cols, err := json.MarshalIndent(map[string][]string{"columns": columns}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode column schema: %w", err)
	}

	columnsPath := filepath.Join(outDir, "columns.json")
	if err := os.WriteFile(columnsPath, cols, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", columnsPath, err)
	}

	fmt.Printf("wrote %s and %s (%d columns)\n", modelPath, columnsPath, len(columns))
	return nil
}
