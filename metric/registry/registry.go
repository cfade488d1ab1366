//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package registry manages the registration and retrieval of metric codecs.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-dataeval-go/metric"
	"trpc.group/trpc-go/trpc-dataeval-go/metric/msle"
)

// Codec constructs metrics and results of one metric kind from their
// persisted and wire forms.
type Codec struct {
	// Parse constructs a pending metric from its JSON parameters.
	Parse func(parameters json.RawMessage) (metric.Metric, error)
	// Decode reconstructs a pending metric from its config wire form.
	Decode func(data []byte) (metric.Metric, error)
	// DecodeResult reconstructs a result from its wire form.
	DecodeResult func(data []byte) (metric.Result, error)
}

// Registry defines the interface for metric codec registries.
type Registry interface {
	// Register registers the codec for a metric name.
	Register(name string, codec Codec) error
	// Get retrieves the codec registered for a metric name.
	Get(name string) (Codec, error)
	// List returns the names of all registered metrics.
	List() []string
}

// registry is the default implementation of Registry.
type registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// New creates a metric codec registry with the built-in metrics registered.
func New() Registry {
	r := &registry{
		codecs: make(map[string]Codec),
	}
	r.Register(msle.Name, Codec{
		Parse: func(parameters json.RawMessage) (metric.Metric, error) {
			return msle.Parse(parameters)
		},
		Decode: func(data []byte) (metric.Metric, error) {
			return msle.Decode(data)
		},
		DecodeResult: func(data []byte) (metric.Result, error) {
			result, err := msle.DecodeResult(data)
			if err != nil {
				return nil, err
			}
			return *result, nil
		},
	})
	return r
}

// Register registers the codec for a metric name.
// A codec registered under the same name is overwritten.
func (r *registry) Register(name string, codec Codec) error {
	if name == "" {
		return errors.New("metric name is empty")
	}
	if codec.Parse == nil {
		return errors.New("codec parse func is nil")
	}
	if codec.Decode == nil {
		return errors.New("codec decode func is nil")
	}
	if codec.DecodeResult == nil {
		return errors.New("codec decode result func is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[name] = codec
	return nil
}

// Get gets the codec registered for a metric name.
// Returns os.ErrNotExist if no codec is registered.
func (r *registry) Get(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if codec, ok := r.codecs[name]; ok {
		return codec, nil
	}
	return Codec{}, fmt.Errorf("get metric codec %s: %w", name, os.ErrNotExist)
}

// List returns the names of all registered metrics sorted lexicographically.
func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
