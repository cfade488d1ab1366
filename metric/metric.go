//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package metric defines the contract shared by regression metrics.
package metric

import (
	"encoding"
	"encoding/json"

	"trpc.group/trpc-go/trpc-dataeval-go/aggregation"
)

// Metric computes one regression statistic over a dataset by pushing the
// per-row computation into the aggregation engine.
//
// A metric instance is bound to a single evaluation session. Each round the
// driver calls Aggregations to learn what the metric still needs, submits
// the union of all requests to the engine, and feeds the produced values
// back through Process. Once a result exists the metric asks for nothing
// further, so the driver loop terminates naturally.
type Metric interface {
	encoding.BinaryMarshaler

	// Name returns the stable identifier of the metric.
	Name() string
	// Aggregations returns the aggregations and pipelines the metric needs
	// this round over the given actual and predicted fields. Both slices
	// are empty once a result is available.
	Aggregations(actualField, predictedField string) ([]aggregation.Aggregation, []aggregation.Pipeline)
	// Process consumes the values produced for a previous Aggregations
	// request and derives the metric result.
	Process(values aggregation.Values)
	// Result returns the computed result and reports whether it is available.
	Result() (Result, bool)
}

// Result is the computed outcome of a metric evaluation.
type Result interface {
	encoding.BinaryMarshaler

	// MetricName identifies the metric that produced this result.
	MetricName() string
}

// Definition is the persisted form of a metric bound to a dataset. The
// parameters payload is interpreted by the codec registered for the metric
// name.
type Definition struct {
	// MetricName identifies the metric.
	MetricName string `json:"metric_name"`
	// Parameters contains metric-specific configuration.
	Parameters json.RawMessage `json:"parameters,omitempty"`
}
