//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package engine defines the aggregation engine abstraction. An engine
// executes scripted aggregations over an indexed dataset and returns the
// scalar each reduction produced, keeping row-level data on the engine side.
package engine

import (
	"context"

	"trpc.group/trpc-go/trpc-dataeval-go/aggregation"
)

// Request describes one aggregation round: the dataset to scan, an optional
// row filter, and the reductions to run over the matching rows.
type Request struct {
	// Index names the dataset to aggregate over.
	Index string
	// Query filters the rows included in the aggregations. A nil query
	// matches every row in the index.
	Query map[string]any
	// Aggregations are the scripted reductions to execute.
	Aggregations []aggregation.Aggregation
	// Pipelines are post-processing reductions over sibling outputs.
	Pipelines []aggregation.Pipeline
}

// Engine executes aggregation requests against a backing dataset.
type Engine interface {
	// Execute runs all reductions in the request and returns their values
	// keyed by reduction name. Reductions that produced no value are absent
	// from the result.
	Execute(ctx context.Context, req *Request) (aggregation.Values, error)
}
