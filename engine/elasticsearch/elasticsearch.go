//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package elasticsearch provides an Elasticsearch-backed aggregation engine.
// Per-row scripts run inside the cluster and only the reduced scalars travel
// back, so evaluations scale with the number of reductions, not rows.
package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-dataeval-go/aggregation"
	"trpc.group/trpc-go/trpc-dataeval-go/engine"
	"trpc.group/trpc-go/trpc-dataeval-go/log"
	storage "trpc.group/trpc-go/trpc-dataeval-go/storage/elasticsearch"
)

// Engine implements engine.Engine on top of an Elasticsearch cluster.
type Engine struct {
	client storage.Client
}

// New creates an Elasticsearch-backed aggregation engine with options.
func New(opts ...Option) (*Engine, error) {
	o := newOptions(opts...)

	client := o.client
	if client == nil {
		builderOpts := o.builderOpts
		if o.instanceName != "" {
			instanceOpts, ok := storage.GetElasticsearchInstance(o.instanceName)
			if !ok {
				return nil, fmt.Errorf("elasticsearch engine: instance %q is not registered", o.instanceName)
			}
			builderOpts = append(instanceOpts, builderOpts...)
		}
		var err error
		client, err = storage.GetClientBuilder()(builderOpts...)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch engine: create client: %w", err)
		}
	}
	return &Engine{client: client}, nil
}

// Ping checks connectivity with the backing cluster.
func (e *Engine) Ping(ctx context.Context) error {
	return e.client.Ping(ctx)
}

// Execute runs all reductions in the request inside the cluster and returns
// their values keyed by reduction name. Reductions that produced no value
// (for example an average over zero matching rows) are absent from the
// returned values.
func (e *Engine) Execute(ctx context.Context, req *engine.Request) (aggregation.Values, error) {
	if req == nil {
		return nil, errors.New("elasticsearch engine: request cannot be nil")
	}
	if req.Index == "" {
		return nil, errors.New("elasticsearch engine: index is required")
	}
	if len(req.Aggregations) == 0 && len(req.Pipelines) == 0 {
		return aggregation.Values{}, nil
	}

	body, err := buildSearchBody(req)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch engine: build search body: %w", err)
	}

	data, err := e.client.Search(ctx, req.Index, body)
	if err != nil {
		return nil, err
	}
	return parseAggregations(data)
}

// buildSearchBody translates the request into a size-0 search body whose
// aggs section carries one scripted reduction per aggregation.
func buildSearchBody(req *engine.Request) ([]byte, error) {
	aggs := make(map[string]any, len(req.Aggregations)+len(req.Pipelines))
	for _, agg := range req.Aggregations {
		aggs[agg.Name] = map[string]any{
			string(agg.Kind): map[string]any{
				"script": scriptBody(agg.Script),
			},
		}
	}
	for _, p := range req.Pipelines {
		op := map[string]any{
			"buckets_path": p.BucketsPaths,
		}
		if p.Script != nil {
			op["script"] = scriptBody(*p.Script)
		}
		aggs[p.Name] = map[string]any{string(p.Kind): op}
	}

	body := map[string]any{
		"size": 0,
		"aggs": aggs,
	}
	if req.Query != nil {
		body["query"] = req.Query
	}
	return json.Marshal(body)
}

// scriptBody renders a script clause, defaulting the language.
func scriptBody(s aggregation.Script) map[string]any {
	lang := s.Lang
	if lang == "" {
		lang = aggregation.DefaultScriptLang
	}
	clause := map[string]any{
		"source": s.Source,
		"lang":   lang,
	}
	if len(s.Params) > 0 {
		clause["params"] = s.Params
	}
	return clause
}

// searchResponse models the slice of the search response this engine reads.
type searchResponse struct {
	Aggregations map[string]struct {
		Value *float64 `json:"value"`
	} `json:"aggregations"`
}

// parseAggregations extracts single-value aggregation results. Null values
// are skipped so callers observe them as absent.
func parseAggregations(data []byte) (aggregation.Values, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("elasticsearch engine: decode search response: %w", err)
	}

	values := make(aggregation.Values, len(resp.Aggregations))
	for name, agg := range resp.Aggregations {
		if agg.Value == nil {
			log.Debugf("elasticsearch engine: aggregation %s produced no value", name)
			continue
		}
		values[name] = *agg.Value
	}
	return values, nil
}
