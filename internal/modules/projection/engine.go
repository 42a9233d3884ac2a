package projection

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/microinvest/internal/modules/allocation"
)

const (
	// DefaultPaths is the canonical Monte Carlo ensemble size.
	DefaultPaths = 800
	// DefaultSeed seeds the deterministic random stream.
	DefaultSeed uint64 = 7
)

// Result summarizes the distribution of simulated ending portfolio values.
type Result struct {
	P10    float64 `json:"p10"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Engine runs the Monte Carlo projection. Paths are embarrassingly parallel;
// each path consumes its own counter-derived PCG sub-stream, so parallel
// execution is bit-identical to sequential for the same seed.
type Engine struct {
	paths   int
	workers int
	log     zerolog.Logger
}

// NewEngine creates a projection engine with the canonical ensemble size.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		paths:   DefaultPaths,
		workers: runtime.GOMAXPROCS(0),
		log:     log.With().Str("component", "projection").Logger(),
	}
}

// NewEngineWithPaths creates an engine with a custom ensemble size.
// Used by tests to keep runs small.
func NewEngineWithPaths(paths int, log zerolog.Logger) *Engine {
	e := NewEngine(log)
	if paths > 0 {
		e.paths = paths
	}
	return e
}

// Project simulates monthly contributions over a horizon in whole years
// (floored at 1). Sub-year precision is lost at this boundary; callers that
// need month-level precision use ProjectMonths directly.
func (e *Engine) Project(contribution float64, years int, alloc allocation.Allocation, assump Assumptions, seed uint64) Result {
	if years < 1 {
		years = 1
	}
	return e.ProjectMonths(contribution, years*12, alloc, assump, seed)
}

// ProjectMonths simulates the ensemble and reports the 10th/50th/90th
// percentile of ending values. Identical inputs always yield bit-identical
// results.
func (e *Engine) ProjectMonths(contribution float64, months int, alloc allocation.Allocation, assump Assumptions, seed uint64) Result {
	if months < 1 {
		months = 1
	}

	// Annual assumptions converted to monthly, in canonical class order.
	// The class order also fixes the draw order within each month.
	classes := allocation.AssetClasses
	weights := make([]float64, len(classes))
	means := make([]float64, len(classes))
	vols := make([]float64, len(classes))
	for i, class := range classes {
		weights[i] = alloc[class]
		means[i] = math.Pow(1+assump.Mean(class), 1.0/12.0) - 1
		vols[i] = assump.Vol(class) / math.Sqrt(12)
	}

	feeMonthly := 1.0
	if assump.FeeAnnual > 0 {
		feeMonthly = math.Pow(1-assump.FeeAnnual, 1.0/12.0)
	}

	finals := make([]float64, e.paths)

	var wg sync.WaitGroup
	pathCh := make(chan int)

	workers := e.workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range pathCh {
				finals[p] = simulatePath(contribution, months, weights, means, vols, feeMonthly, seed, uint64(p))
			}
		}()
	}

	for p := 0; p < e.paths; p++ {
		pathCh <- p
	}
	close(pathCh)
	wg.Wait()

	sort.Float64s(finals)

	e.log.Debug().
		Int("paths", e.paths).
		Int("months", months).
		Float64("contribution", contribution).
		Msg("Projection complete")

	return Result{
		P10:    percentile(finals, 10),
		Median: percentile(finals, 50),
		P90:    percentile(finals, 90),
	}
}

// simulatePath runs one path on its own sub-stream. Draws are consumed in a
// fixed order: month-major, then asset-class in canonical order.
func simulatePath(contribution float64, months int, weights, means, vols []float64, feeMonthly float64, seed, path uint64) float64 {
	src := rand.NewPCG(seed, path)

	draws := make([]distuv.Normal, len(weights))
	for i := range weights {
		draws[i] = distuv.Normal{Mu: means[i], Sigma: vols[i], Src: src}
	}

	value := 0.0
	for m := 0; m < months; m++ {
		value += contribution

		blended := 0.0
		for i := range weights {
			blended += weights[i] * draws[i].Rand()
		}

		value *= (1 + blended) * feeMonthly
	}
	return value
}

// percentile computes the p-th percentile of sorted values using linear
// interpolation between adjacent order statistics.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
