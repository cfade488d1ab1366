//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package evaluation orchestrates metric evaluation runs against datasets
// served by an aggregation engine.
//
// The evaluator never pulls rows out of the engine. Each round it collects
// the aggregations the pending metrics ask for, submits their union as one
// engine request, and feeds the produced values back until every metric has
// computed its result.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-dataeval-go/engine"
	"trpc.group/trpc-go/trpc-dataeval-go/metric"
	"trpc.group/trpc-go/trpc-dataeval-go/metric/registry"
)

// DatasetEvaluator evaluates configured metrics against datasets.
type DatasetEvaluator interface {
	// Evaluate runs all metrics configured for the evaluation's dataset.
	Evaluate(ctx context.Context, evaluation *Evaluation) (*Report, error)
	// EvaluateAll runs the given evaluations and returns one report per
	// evaluation in input order.
	EvaluateAll(ctx context.Context, evaluations []*Evaluation) ([]*Report, error)
	// Close closes the evaluator and releases owned resources.
	Close() error
}

// Evaluation describes one evaluation session against a dataset.
type Evaluation struct {
	// DatasetID identifies the dataset and selects its configured metrics.
	DatasetID string `json:"dataset_id"`
	// Index is the engine index holding the dataset rows.
	Index string `json:"index"`
	// Query optionally narrows the rows the metrics are computed over.
	Query map[string]any `json:"query,omitempty"`
	// ActualField names the ground-truth column.
	ActualField string `json:"actual_field"`
	// PredictedField names the prediction column.
	PredictedField string `json:"predicted_field"`
}

// Report contains the outcome of one evaluation run.
type Report struct {
	// EvaluationID uniquely identifies this run.
	EvaluationID string `json:"evaluation_id"`
	// AppName identifies the application owning the dataset.
	AppName string `json:"app_name"`
	// DatasetID identifies the evaluated dataset.
	DatasetID string `json:"dataset_id"`
	// Index is the engine index the metrics were computed over.
	Index string `json:"index"`
	// Rounds records how many aggregation rounds the run took.
	Rounds int `json:"rounds"`
	// ExecutionTime records the total latency of the run.
	ExecutionTime time.Duration `json:"execution_time"`
	// MetricResults lists the outcome of each configured metric.
	MetricResults []*MetricReport `json:"metric_results"`
}

// MetricReport pairs a metric name with its computed result.
type MetricReport struct {
	// MetricName identifies the metric.
	MetricName string `json:"metric_name"`
	// Result is the computed result.
	Result metric.Result `json:"result"`
}

// New creates a DatasetEvaluator with the supplied engine and options.
func New(appName string, eng engine.Engine, opt ...Option) (DatasetEvaluator, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if eng == nil {
		return nil, errors.New("engine is nil")
	}
	opts := newOptions(opt...)
	e := &datasetEvaluator{
		appName:       appName,
		engine:        eng,
		metricManager: opts.metricManager,
		registry:      opts.registry,
		maxRounds:     opts.maxRounds,
	}
	if e.metricManager == nil {
		return nil, errors.New("metric manager is nil")
	}
	if e.registry == nil {
		return nil, errors.New("metric registry is nil")
	}
	if e.maxRounds <= 0 {
		return nil, errors.New("max rounds must be greater than 0")
	}
	if opts.parallelEvaluationEnabled {
		pool, err := createEvaluationPool(opts.parallelism)
		if err != nil {
			return nil, fmt.Errorf("create evaluation pool: %w", err)
		}
		e.evaluationPool = pool
	}
	return e, nil
}

// datasetEvaluator is the default implementation of DatasetEvaluator.
type datasetEvaluator struct {
	appName        string
	engine         engine.Engine
	metricManager  metric.Manager
	registry       registry.Registry
	maxRounds      int
	evaluationPool *ants.PoolWithFunc
}

// Evaluate runs all metrics configured for the evaluation's dataset.
func (e *datasetEvaluator) Evaluate(ctx context.Context, evaluation *Evaluation) (*Report, error) {
	if err := validateEvaluation(evaluation); err != nil {
		return nil, err
	}
	start := time.Now()
	metrics, err := e.loadMetrics(ctx, evaluation.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	rounds, err := e.computeMetrics(ctx, evaluation, metrics)
	if err != nil {
		return nil, fmt.Errorf("compute metrics: %w", err)
	}
	metricResults := make([]*MetricReport, 0, len(metrics))
	for _, m := range metrics {
		result, ok := m.Result()
		if !ok {
			return nil, fmt.Errorf("metric %s produced no result", m.Name())
		}
		metricResults = append(metricResults, &MetricReport{
			MetricName: m.Name(),
			Result:     result,
		})
	}
	return &Report{
		EvaluationID:  uuid.NewString(),
		AppName:       e.appName,
		DatasetID:     evaluation.DatasetID,
		Index:         evaluation.Index,
		Rounds:        rounds,
		ExecutionTime: time.Since(start),
		MetricResults: metricResults,
	}, nil
}

// EvaluateAll runs the given evaluations and returns one report per
// evaluation in input order. When parallel evaluation is enabled the
// evaluations run on the worker pool. A failed evaluation leaves a nil
// report in its slot and contributes its error to the returned error.
func (e *datasetEvaluator) EvaluateAll(ctx context.Context, evaluations []*Evaluation) ([]*Report, error) {
	if len(evaluations) == 0 {
		return []*Report{}, nil
	}
	reports := make([]*Report, len(evaluations))
	errs := make([]error, len(evaluations))
	if e.evaluationPool != nil {
		e.evaluateParallel(ctx, evaluations, reports, errs)
	} else {
		for idx, evaluation := range evaluations {
			reports[idx], errs[idx] = e.Evaluate(ctx, evaluation)
		}
	}
	var merr *multierror.Error
	for idx, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("evaluation %d: %w", idx, err))
		}
	}
	return reports, merr.ErrorOrNil()
}

// Close closes the evaluator and releases owned resources.
func (e *datasetEvaluator) Close() error {
	if e.evaluationPool != nil {
		e.evaluationPool.Release()
	}
	var overallErr error
	if e.metricManager != nil {
		if err := e.metricManager.Close(); err != nil {
			overallErr = errors.Join(overallErr, fmt.Errorf("close metric manager: %w", err))
		}
	}
	return overallErr
}

// loadMetrics builds fresh metric instances for one evaluation session from
// the definitions configured for the dataset.
func (e *datasetEvaluator) loadMetrics(ctx context.Context, datasetID string) ([]metric.Metric, error) {
	names, err := e.metricManager.List(ctx, e.appName, datasetID)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	metrics := make([]metric.Metric, 0, len(names))
	for _, name := range names {
		definition, err := e.metricManager.Get(ctx, e.appName, datasetID, name)
		if err != nil {
			return nil, fmt.Errorf("get metric %s: %w", name, err)
		}
		codec, err := e.registry.Get(definition.MetricName)
		if err != nil {
			return nil, fmt.Errorf("resolve metric %s: %w", definition.MetricName, err)
		}
		m, err := codec.Parse(definition.Parameters)
		if err != nil {
			return nil, fmt.Errorf("parse metric %s: %w", definition.MetricName, err)
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// computeMetrics runs aggregation rounds until no metric requests further
// work. Each round submits the union of all requested aggregations as a
// single engine request and feeds the values back to the metrics that
// asked for them.
func (e *datasetEvaluator) computeMetrics(ctx context.Context, evaluation *Evaluation, metrics []metric.Metric) (int, error) {
	rounds := 0
	for {
		req := &engine.Request{
			Index: evaluation.Index,
			Query: evaluation.Query,
		}
		requested := make([]metric.Metric, 0, len(metrics))
		for _, m := range metrics {
			aggs, pipelines := m.Aggregations(evaluation.ActualField, evaluation.PredictedField)
			if len(aggs) == 0 && len(pipelines) == 0 {
				continue
			}
			req.Aggregations = append(req.Aggregations, aggs...)
			req.Pipelines = append(req.Pipelines, pipelines...)
			requested = append(requested, m)
		}
		if len(requested) == 0 {
			return rounds, nil
		}
		if rounds >= e.maxRounds {
			return rounds, fmt.Errorf("%d metrics still pending after %d rounds", len(requested), rounds)
		}
		values, err := e.engine.Execute(ctx, req)
		if err != nil {
			return rounds, fmt.Errorf("execute aggregation round %d: %w", rounds+1, err)
		}
		rounds++
		for _, m := range requested {
			m.Process(values)
		}
	}
}

func validateEvaluation(evaluation *Evaluation) error {
	if evaluation == nil {
		return errors.New("evaluation is nil")
	}
	if evaluation.DatasetID == "" {
		return errors.New("dataset id is empty")
	}
	if evaluation.Index == "" {
		return errors.New("index is empty")
	}
	if evaluation.ActualField == "" {
		return errors.New("actual field is empty")
	}
	if evaluation.PredictedField == "" {
		return errors.New("predicted field is empty")
	}
	return nil
}
