//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package metric

import (
	"context"
)

// Manager defines the interface for managing metric definitions.
type Manager interface {
	// List returns all metric names identified by the given app name and dataset ID.
	List(ctx context.Context, appName, datasetID string) ([]string, error)
	// Get gets a metric definition identified by the given app name, dataset ID and metric name.
	Get(ctx context.Context, appName, datasetID, metricName string) (*Definition, error)
	// Add stores a new metric definition identified by the given app name and dataset ID.
	Add(ctx context.Context, appName, datasetID string, definition *Definition) error
	// Update updates an existing metric definition identified by the given app name and dataset ID.
	Update(ctx context.Context, appName, datasetID string, definition *Definition) error
	// Delete removes a metric definition identified by the given app name, dataset ID and metric name.
	Delete(ctx context.Context, appName, datasetID, metricName string) error
	// Close closes the manager and releases owned resources.
	Close() error
}
