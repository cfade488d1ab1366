//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package msle implements the mean squared logarithmic error metric.
//
// The per-row squared log difference is evaluated inside the aggregation
// engine and reduced to its mean there, so only a single scalar travels
// back to the evaluator regardless of dataset size.
package msle

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"trpc.group/trpc-go/trpc-dataeval-go/aggregation"
	"trpc.group/trpc-go/trpc-dataeval-go/metric"
)

const (
	// Name is the stable identifier of the metric.
	Name = "mean_squared_logarithmic_error"
	// DefaultOffset is the additive constant applied to both fields before
	// the logarithm when no offset is configured.
	DefaultOffset = 1.0
)

// aggName names the average reduction in engine responses.
const aggName = "regression_mean_squared_logarithmic_error"

// scriptTemplate is the per-row expression. Field names are inlined because
// document accessors cannot be parameterized; the offset travels in params
// so the engine caches one compiled script per field pair.
const scriptTemplate = "def diff = Math.log(doc['%s'].value + params.offset) - " +
	"Math.log(doc['%s'].value + params.offset); return diff * diff;"

// wireSize is the byte length of the config and result wire forms.
const wireSize = 8

var _ metric.Metric = (*Metric)(nil)
var _ metric.Result = Result{}

// Config holds the immutable configuration of the metric.
type Config struct {
	// Offset is added to both fields before taking the logarithm. It must
	// keep field+offset positive for the dataset's value range; violations
	// surface as script failures in the engine, not here.
	Offset float64 `json:"offset"`
}

// MarshalBinary encodes the offset as a big-endian IEEE-754 value.
func (c Config) MarshalBinary() ([]byte, error) {
	buf := make([]byte, wireSize)
	binary.BigEndian.PutUint64(buf, math.Float64bits(c.Offset))
	return buf, nil
}

// UnmarshalBinary decodes the wire form produced by MarshalBinary.
func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) != wireSize {
		return fmt.Errorf("decode msle config: want %d bytes, got %d", wireSize, len(data))
	}
	c.Offset = math.Float64frombits(binary.BigEndian.Uint64(data))
	return nil
}

// Equal reports whether both configs carry bit-identical offsets.
func (c Config) Equal(other Config) bool {
	return math.Float64bits(c.Offset) == math.Float64bits(other.Offset)
}

// Hash returns a hash consistent with Equal.
func (c Config) Hash() uint64 {
	return math.Float64bits(c.Offset)
}

// Result is the computed mean of squared log differences.
type Result struct {
	// Error is the mean squared logarithmic error.
	Error float64 `json:"error"`
}

// MetricName identifies the metric that produced this result.
func (r Result) MetricName() string {
	return Name
}

// MarshalBinary encodes the error as a big-endian IEEE-754 value.
func (r Result) MarshalBinary() ([]byte, error) {
	buf := make([]byte, wireSize)
	binary.BigEndian.PutUint64(buf, math.Float64bits(r.Error))
	return buf, nil
}

// UnmarshalBinary decodes the wire form produced by MarshalBinary.
func (r *Result) UnmarshalBinary(data []byte) error {
	if len(data) != wireSize {
		return fmt.Errorf("decode msle result: want %d bytes, got %d", wireSize, len(data))
	}
	r.Error = math.Float64frombits(binary.BigEndian.Uint64(data))
	return nil
}

// Equal reports whether both results carry bit-identical errors.
func (r Result) Equal(other Result) bool {
	return math.Float64bits(r.Error) == math.Float64bits(other.Error)
}

// Hash returns a hash consistent with Equal.
func (r Result) Hash() uint64 {
	return math.Float64bits(r.Error)
}

// Metric computes the mean squared logarithmic error between an actual and
// a predicted numeric field. An instance is bound to one evaluation session
// and computes at most once: after the first Process call it stops
// requesting aggregations and keeps returning the same result.
type Metric struct {
	config Config
	result *Result
}

// New creates a metric with the supplied options.
func New(opt ...Option) *Metric {
	opts := newOptions(opt...)
	return &Metric{config: Config{Offset: opts.offset}}
}

// Parse constructs a metric from its JSON parameters. Empty parameters or
// an absent offset fall back to DefaultOffset.
func Parse(parameters json.RawMessage) (*Metric, error) {
	if len(parameters) == 0 {
		return New(), nil
	}
	var params struct {
		Offset *float64 `json:"offset"`
	}
	if err := json.Unmarshal(parameters, &params); err != nil {
		return nil, fmt.Errorf("parse msle parameters: %w", err)
	}
	if params.Offset == nil {
		return New(), nil
	}
	return New(WithOffset(*params.Offset)), nil
}

// Decode reconstructs a pending metric from the config wire form.
func Decode(data []byte) (*Metric, error) {
	var config Config
	if err := config.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &Metric{config: config}, nil
}

// DecodeResult reconstructs a result from its wire form.
func DecodeResult(data []byte) (*Result, error) {
	var result Result
	if err := result.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &result, nil
}

// Name returns the stable identifier of the metric.
func (m *Metric) Name() string {
	return Name
}

// Config returns the immutable configuration of the metric.
func (m *Metric) Config() Config {
	return m.config
}

// MarshalBinary encodes the metric configuration in its wire form.
func (m *Metric) MarshalBinary() ([]byte, error) {
	return m.config.MarshalBinary()
}

// Aggregations returns the single average reduction the metric still needs,
// or nothing once a result is available.
func (m *Metric) Aggregations(actualField, predictedField string) ([]aggregation.Aggregation, []aggregation.Pipeline) {
	if m.result != nil {
		return nil, nil
	}
	script := aggregation.Script{
		Source: fmt.Sprintf(scriptTemplate, actualField, predictedField),
		Lang:   aggregation.DefaultScriptLang,
		Params: map[string]any{"offset": m.config.Offset},
	}
	return []aggregation.Aggregation{aggregation.Avg(aggName, script)}, nil
}

// Process consumes the values produced for a previous Aggregations request.
// The engine's average is already the mean, so it is taken as the error
// directly. When the reduction produced no value, which happens when no
// rows matched, the error deliberately defaults to 0 instead of surfacing
// an absent state.
func (m *Metric) Process(values aggregation.Values) {
	value, ok := values.Value(aggName)
	if !ok {
		value = 0
	}
	m.result = &Result{Error: value}
}

// Result returns the computed result and reports whether it is available.
func (m *Metric) Result() (metric.Result, bool) {
	if m.result == nil {
		return nil, false
	}
	return *m.result, true
}
