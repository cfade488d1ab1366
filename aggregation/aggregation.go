//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package aggregation defines the push-down computation model shared by
// metrics and aggregation engines: a per-row scripted expression combined
// with a named reduction, and the scalar values a reduction produces.
package aggregation

// Kind identifies the reduction operator applied across all per-row values.
type Kind string

const (
	// KindAvg reduces per-row values to their arithmetic mean.
	KindAvg Kind = "avg"
	// KindSum reduces per-row values to their sum.
	KindSum Kind = "sum"
	// KindValueCount reduces per-row values to the number of values seen.
	KindValueCount Kind = "value_count"
)

// DefaultScriptLang is the script language assumed when Script.Lang is empty.
const DefaultScriptLang = "painless"

// Script is a per-row expression evaluated inside the aggregation engine.
// Dynamic constants travel in Params so the engine can cache the compiled
// source across requests.
type Script struct {
	// Source is the script body evaluated once per row.
	Source string `json:"source"`
	// Lang is the script language. Defaults to DefaultScriptLang when empty.
	Lang string `json:"lang,omitempty"`
	// Params holds named constants referenced by the source.
	Params map[string]any `json:"params,omitempty"`
}

// Aggregation describes one named reduction over a scripted per-row value.
type Aggregation struct {
	// Name identifies the reduction in the engine response.
	Name string
	// Kind is the reduction operator.
	Kind Kind
	// Script produces the per-row value being reduced.
	Script Script
}

// Avg builds an average reduction over the given per-row script.
func Avg(name string, script Script) Aggregation {
	return Aggregation{Name: name, Kind: KindAvg, Script: script}
}

// Pipeline describes a post-processing aggregation. It operates on the
// outputs of sibling aggregations (addressed through BucketsPaths) instead
// of on rows.
type Pipeline struct {
	// Name identifies the reduction in the engine response.
	Name string
	// Kind is the pipeline operator.
	Kind Kind
	// BucketsPaths maps script variables to sibling aggregation outputs.
	BucketsPaths map[string]string
	// Script combines the addressed outputs, when the operator takes one.
	Script *Script
}

// Values maps reduction names to the scalar each reduction produced.
// Reductions that produced no value (for example an average over zero
// matching rows) are absent from the map.
type Values map[string]float64

// Value returns the scalar produced by the named reduction and whether the
// reduction produced one.
func (v Values) Value(name string) (float64, bool) {
	val, ok := v[name]
	return val, ok
}
