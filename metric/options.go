//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package metric

import "path/filepath"

const (
	// DefaultBaseDir is the default base directory for metric definition files.
	DefaultBaseDir = "metrics"
	// DefaultMetricsExtension is the default extension for metric definition files.
	DefaultMetricsExtension = ".metrics.json"
)

// PathBuilder builds the path where metric definitions for a dataset are stored.
type PathBuilder func(baseDir, appName, datasetID string) string

// Options configure the file-backed metric manager.
type Options struct {
	// BaseDir is the base directory for metric definition files.
	BaseDir string
	// PathBuilder is the function to build the path where metric definitions are stored.
	PathBuilder PathBuilder
}

// NewOptions constructs Options with defaults applied.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		BaseDir:     DefaultBaseDir,
		PathBuilder: defaultPathBuilder,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithBaseDir sets the root directory for storing metric definition files.
func WithBaseDir(dir string) Option {
	return func(o *Options) {
		o.BaseDir = dir
	}
}

// WithPathFunc overrides how metric definition file paths are generated.
func WithPathFunc(p PathBuilder) Option {
	return func(o *Options) {
		o.PathBuilder = p
	}
}

func defaultPathBuilder(baseDir, appName, datasetID string) string {
	return filepath.Join(baseDir, appName, datasetID+DefaultMetricsExtension)
}
