//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package msle

// options holds the configuration for the metric.
type options struct {
	offset float64
}

// newOptions applies the given options on top of the defaults.
func newOptions(opt ...Option) *options {
	opts := &options{
		offset: DefaultOffset,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option configures the metric.
type Option func(*options)

// WithOffset sets the additive constant applied to both fields before the
// logarithm.
func WithOffset(offset float64) Option {
	return func(o *options) {
		o.offset = offset
	}
}
