//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory metric manager implementation.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"trpc.group/trpc-go/trpc-dataeval-go/internal/clone"
	"trpc.group/trpc-go/trpc-dataeval-go/metric"
)

var _ metric.Manager = (*manager)(nil)

// manager implements metric.Manager backed by in-memory state.
// Get returns deep-copied definitions to avoid accidental mutation.
type manager struct {
	mu          sync.RWMutex
	definitions map[string]map[string][]*metric.Definition // appName -> datasetID -> definitions.
}

// New creates an in-memory metric manager.
func New() metric.Manager {
	return &manager{
		definitions: make(map[string]map[string][]*metric.Definition),
	}
}

// List lists all metric names identified by the given app name and dataset ID.
func (m *manager) List(_ context.Context, appName, datasetID string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if datasetID == "" {
		return nil, errors.New("empty dataset id")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	definitions := m.definitions[appName][datasetID]
	metricNames := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		metricNames = append(metricNames, definition.MetricName)
	}
	return metricNames, nil
}

// Get gets a metric definition identified by the given app name, dataset ID and metric name.
func (m *manager) Get(_ context.Context, appName, datasetID, metricName string) (*metric.Definition, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if datasetID == "" {
		return nil, errors.New("empty dataset id")
	}
	if metricName == "" {
		return nil, errors.New("empty metric name")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, definition := range m.definitions[appName][datasetID] {
		if definition != nil && definition.MetricName == metricName {
			cloned, err := clone.Clone(definition)
			if err != nil {
				return nil, fmt.Errorf("clone metric definition: %w", err)
			}
			return cloned, nil
		}
	}
	return nil, fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, metricName, os.ErrNotExist)
}

// Add adds a metric definition to the dataset identified by datasetID.
func (m *manager) Add(_ context.Context, appName, datasetID string, definition *metric.Definition) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if datasetID == "" {
		return errors.New("empty dataset id")
	}
	if definition == nil {
		return errors.New("definition is nil")
	}
	if definition.MetricName == "" {
		return errors.New("metric name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDatasetExist(appName, datasetID)
	for _, existing := range m.definitions[appName][datasetID] {
		if existing != nil && existing.MetricName == definition.MetricName {
			return fmt.Errorf("metric %s.%s.%s already exists", appName, datasetID, definition.MetricName)
		}
	}
	m.definitions[appName][datasetID] = append(m.definitions[appName][datasetID], definition)
	return nil
}

// Update updates the metric definition identified by datasetID and definition.MetricName.
func (m *manager) Update(_ context.Context, appName, datasetID string, definition *metric.Definition) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if datasetID == "" {
		return errors.New("empty dataset id")
	}
	if definition == nil {
		return errors.New("definition is nil")
	}
	if definition.MetricName == "" {
		return errors.New("metric name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.definitions[appName][datasetID] {
		if existing != nil && existing.MetricName == definition.MetricName {
			m.definitions[appName][datasetID][i] = definition
			return nil
		}
	}
	return fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, definition.MetricName, os.ErrNotExist)
}

// Delete deletes the metric definition identified by datasetID and metricName.
func (m *manager) Delete(_ context.Context, appName, datasetID, metricName string) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if datasetID == "" {
		return errors.New("empty dataset id")
	}
	if metricName == "" {
		return errors.New("metric name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	definitions := m.definitions[appName][datasetID]
	for i, existing := range definitions {
		if existing != nil && existing.MetricName == metricName {
			m.definitions[appName][datasetID] = append(definitions[:i], definitions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, metricName, os.ErrNotExist)
}

// Close closes the manager. The in-memory manager holds no resources.
func (m *manager) Close() error {
	return nil
}

func (m *manager) ensureDatasetExist(appName, datasetID string) {
	if _, ok := m.definitions[appName]; !ok {
		m.definitions[appName] = make(map[string][]*metric.Definition)
	}
	if _, ok := m.definitions[appName][datasetID]; !ok {
		m.definitions[appName][datasetID] = []*metric.Definition{}
	}
}
