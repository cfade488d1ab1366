//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package evaluation

import (
	"trpc.group/trpc-go/trpc-dataeval-go/metric"
	"trpc.group/trpc-go/trpc-dataeval-go/metric/inmemory"
	"trpc.group/trpc-go/trpc-dataeval-go/metric/registry"
)

// defaultMaxRounds caps how many aggregation rounds one evaluation may take
// before it is treated as stuck.
const defaultMaxRounds = 8

type options struct {
	metricManager             metric.Manager
	registry                  registry.Registry
	maxRounds                 int
	parallelism               int
	parallelEvaluationEnabled bool
}

func newOptions(opt ...Option) *options {
	opts := &options{
		metricManager: inmemory.New(),
		registry:      registry.New(),
		maxRounds:     defaultMaxRounds,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option configures the dataset evaluator.
type Option func(*options)

// WithMetricManager sets the manager supplying metric definitions.
func WithMetricManager(m metric.Manager) Option {
	return func(o *options) {
		o.metricManager = m
	}
}

// WithRegistry sets the registry resolving metric codecs.
func WithRegistry(r registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithMaxRounds caps how many aggregation rounds one evaluation may take.
func WithMaxRounds(maxRounds int) Option {
	return func(o *options) {
		if maxRounds > 0 {
			o.maxRounds = maxRounds
		}
	}
}

// WithParallelEvaluationEnabled runs EvaluateAll evaluations on a worker
// pool instead of serially. Requires a positive parallelism.
func WithParallelEvaluationEnabled(enabled bool) Option {
	return func(o *options) {
		o.parallelEvaluationEnabled = enabled
	}
}

// WithParallelism sets the worker pool size for parallel evaluation.
func WithParallelism(parallelism int) Option {
	return func(o *options) {
		o.parallelism = parallelism
	}
}
