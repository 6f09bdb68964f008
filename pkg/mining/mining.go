// Package mining defines the narrow contract to the external process
// mining engine. The analyzer only needs discovery, token replay, fitness
// evaluation and performance DFG computation; the algorithms themselves
// live outside this module.
package mining

import (
	"context"
	"fmt"

	"github.com/playtrace/playtrace/internal/model"
)

// Model is an opaque process model produced by Discover and consumed by
// Replay and Fitness. Engines define the concrete type.
type Model interface{}

// DiscoveryParams tunes heuristic-net discovery.
type DiscoveryParams struct {
	// DependencyThresh is the heuristic miner dependency threshold.
	DependencyThresh float64

	// CleaningThresh is the DFG pre-cleaning noise threshold.
	CleaningThresh float64

	// MinActCount is the minimum activity count; the orchestrator
	// derives it from the log length.
	MinActCount float64
}

// DefaultDiscoveryParams returns the discovery parameters used for
// typical-playthrough models.
func DefaultDiscoveryParams(logLen int) DiscoveryParams {
	return DiscoveryParams{
		DependencyThresh: 0.96,
		CleaningThresh:   0.5,
		MinActCount:      float64(logLen) / 3,
	}
}

// ReplayResult carries the per-trace outcome of token replay, aligned
// index-for-index with the replayed log.
type ReplayResult struct {
	TraceIsFit   bool
	TraceFitness float64
}

// FitnessMethod selects the fitness evaluation variant.
type FitnessMethod int

const (
	FitnessTokenBased FitnessMethod = iota
	FitnessAlignmentBased
)

func (m FitnessMethod) String() string {
	switch m {
	case FitnessTokenBased:
		return "token"
	case FitnessAlignmentBased:
		return "alignment"
	default:
		return "unknown"
	}
}

// Aggregation selects the statistic applied to DFG edge durations.
type Aggregation string

const (
	AggregationMedian Aggregation = "median"
	AggregationMean   Aggregation = "mean"
)

// Edge is one directly-follows relation.
type Edge struct {
	From string
	To   string
}

// DFG is a directly-follows graph with an aggregated performance value
// (seconds) per edge.
type DFG struct {
	Edges map[Edge]float64
}

// Engine is the process mining collaborator.
type Engine interface {
	// Discover mines a process model from the log.
	Discover(ctx context.Context, log *model.EventLog, params DiscoveryParams) (Model, error)

	// Replay runs token replay and returns one result per trace, in log
	// order.
	Replay(ctx context.Context, log *model.EventLog, m Model) ([]ReplayResult, error)

	// Fitness evaluates log fitness against the model.
	Fitness(ctx context.Context, log *model.EventLog, m Model, method FitnessMethod) (float64, error)

	// PerformanceDFG computes a performance directly-follows graph.
	PerformanceDFG(ctx context.Context, log *model.EventLog, agg Aggregation) (*DFG, error)
}

// ErrReplayLengthMismatch is returned when a replay result sequence does
// not align index-for-index with its log.
var ErrReplayLengthMismatch = fmt.Errorf("mining: replay result length does not match log length")

// ErrEngineUnavailable is returned by Disabled for every operation.
var ErrEngineUnavailable = fmt.Errorf("mining: no process mining engine configured")

// Disabled is the engine used when no external engine is wired in.
// Analyses that do not touch the engine run normally; the rest fail
// with ErrEngineUnavailable instead of silently skipping steps.
type Disabled struct{}

func (Disabled) Discover(context.Context, *model.EventLog, DiscoveryParams) (Model, error) {
	return nil, ErrEngineUnavailable
}

func (Disabled) Replay(context.Context, *model.EventLog, Model) ([]ReplayResult, error) {
	return nil, ErrEngineUnavailable
}

func (Disabled) Fitness(context.Context, *model.EventLog, Model, FitnessMethod) (float64, error) {
	return 0, ErrEngineUnavailable
}

func (Disabled) PerformanceDFG(context.Context, *model.EventLog, Aggregation) (*DFG, error) {
	return nil, ErrEngineUnavailable
}
