//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a filesystem-backed metric manager implementation.
// Definitions for one dataset live in a single JSON file so they can be
// reviewed and edited by hand.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"trpc.group/trpc-go/trpc-dataeval-go/metric"
)

var _ metric.Manager = (*manager)(nil)

type manager struct {
	mu       sync.RWMutex
	baseDir  string
	pathFunc metric.PathBuilder
}

// New creates a filesystem-backed metric manager.
func New(opts ...metric.Option) metric.Manager {
	options := metric.NewOptions(opts...)
	return &manager{
		baseDir:  options.BaseDir,
		pathFunc: options.PathBuilder,
	}
}

// List lists all metric names identified by the given app name and dataset ID.
func (m *manager) List(_ context.Context, appName, datasetID string) ([]string, error) {
	if err := validateKeys(appName, datasetID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	definitions, err := m.load(appName, datasetID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		if definition != nil {
			names = append(names, definition.MetricName)
		}
	}
	return names, nil
}

// Get gets a metric definition identified by the given app name, dataset ID and metric name.
func (m *manager) Get(_ context.Context, appName, datasetID, metricName string) (*metric.Definition, error) {
	if err := validateKeys(appName, datasetID); err != nil {
		return nil, err
	}
	if metricName == "" {
		return nil, errors.New("empty metric name")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	definitions, err := m.load(appName, datasetID)
	if err != nil {
		return nil, err
	}
	for _, definition := range definitions {
		if definition != nil && definition.MetricName == metricName {
			return definition, nil
		}
	}
	return nil, fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, metricName, os.ErrNotExist)
}

// Add adds a metric definition to the dataset identified by datasetID.
func (m *manager) Add(_ context.Context, appName, datasetID string, definition *metric.Definition) error {
	if err := validateDefinition(appName, datasetID, definition); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	definitions, err := m.load(appName, datasetID)
	if err != nil {
		return err
	}
	for _, existing := range definitions {
		if existing != nil && existing.MetricName == definition.MetricName {
			return fmt.Errorf("metric %s.%s.%s already exists", appName, datasetID, definition.MetricName)
		}
	}
	return m.store(appName, datasetID, append(definitions, definition))
}

// Update updates the metric definition identified by datasetID and definition.MetricName.
func (m *manager) Update(_ context.Context, appName, datasetID string, definition *metric.Definition) error {
	if err := validateDefinition(appName, datasetID, definition); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	definitions, err := m.load(appName, datasetID)
	if err != nil {
		return err
	}
	for i, existing := range definitions {
		if existing != nil && existing.MetricName == definition.MetricName {
			definitions[i] = definition
			return m.store(appName, datasetID, definitions)
		}
	}
	return fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, definition.MetricName, os.ErrNotExist)
}

// Delete deletes the metric definition identified by datasetID and metricName.
func (m *manager) Delete(_ context.Context, appName, datasetID, metricName string) error {
	if err := validateKeys(appName, datasetID); err != nil {
		return err
	}
	if metricName == "" {
		return errors.New("empty metric name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	definitions, err := m.load(appName, datasetID)
	if err != nil {
		return err
	}
	for i, existing := range definitions {
		if existing != nil && existing.MetricName == metricName {
			return m.store(appName, datasetID, append(definitions[:i], definitions[i+1:]...))
		}
	}
	return fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, metricName, os.ErrNotExist)
}

// Close closes the manager. The filesystem manager holds no resources.
func (m *manager) Close() error {
	return nil
}

func (m *manager) metricPath(appName, datasetID string) string {
	return m.pathFunc(m.baseDir, appName, datasetID)
}

// load reads the definitions for a dataset. A missing file means no metrics
// have been configured yet and yields an empty slice.
func (m *manager) load(appName, datasetID string) ([]*metric.Definition, error) {
	path := m.metricPath(appName, datasetID)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []*metric.Definition{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metrics %s for app %s: %w", datasetID, appName, err)
	}
	var definitions []*metric.Definition
	if err := json.Unmarshal(data, &definitions); err != nil {
		return nil, fmt.Errorf("unmarshal metrics %s for app %s: %w", datasetID, appName, err)
	}
	if definitions == nil {
		definitions = []*metric.Definition{}
	}
	return definitions, nil
}

// store writes the definitions through a temp file and renames it into
// place so readers never observe a partially written file.
func (m *manager) store(appName, datasetID string, definitions []*metric.Definition) error {
	path := m.metricPath(appName, datasetID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir all %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	if definitions == nil {
		definitions = []*metric.Definition{}
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(definitions); err != nil {
		file.Close()
		return fmt.Errorf("encode metric definitions: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

func validateKeys(appName, datasetID string) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if datasetID == "" {
		return errors.New("empty dataset id")
	}
	return nil
}

func validateDefinition(appName, datasetID string, definition *metric.Definition) error {
	if err := validateKeys(appName, datasetID); err != nil {
		return err
	}
	if definition == nil {
		return errors.New("definition is nil")
	}
	if definition.MetricName == "" {
		return errors.New("metric name is empty")
	}
	return nil
}
