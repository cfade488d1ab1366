//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"trpc.group/trpc-go/trpc-dataeval-go/internal/mysqldb"
	"trpc.group/trpc-go/trpc-dataeval-go/metric"
	storage "trpc.group/trpc-go/trpc-dataeval-go/storage/mysql"
)

var _ metric.Manager = (*manager)(nil)

type manager struct {
	opts   options
	db     storage.Client
	tables mysqldb.Tables
}

// New creates a MySQL-backed metric manager.
func New(opts ...Option) (metric.Manager, error) {
	options := newOptions(opts...)
	db, err := mysqldb.BuildClient(options.dsn, options.instanceName, options.extraOptions)
	if err != nil {
		return nil, fmt.Errorf("create mysql client failed: %w", err)
	}
	tables := mysqldb.BuildTables(options.tablePrefix)
	m := &manager{
		opts:   *options,
		db:     db,
		tables: tables,
	}
	if !options.skipDBInit {
		ctx, cancel := context.WithTimeout(context.Background(), options.initTimeout)
		defer cancel()
		if err := mysqldb.EnsureSchema(ctx, db, tables); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init database failed: %w", err)
		}
	}
	return m, nil
}

// Close implements metric.Manager.
func (m *manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// List lists metric names for the specified dataset from MySQL.
func (m *manager) List(ctx context.Context, appName, datasetID string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if datasetID == "" {
		return nil, errors.New("empty dataset id")
	}
	query := fmt.Sprintf(
		"SELECT metric_name FROM %s WHERE app_name = ? AND dataset_id = ? ORDER BY metric_name ASC",
		m.tables.Metrics,
	)
	var names []string
	if err := m.db.Query(ctx, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	}, query, appName, datasetID); err != nil {
		return nil, fmt.Errorf("list metrics for app %s: %w", appName, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Get retrieves a metric definition from MySQL.
func (m *manager) Get(ctx context.Context, appName, datasetID, metricName string) (*metric.Definition, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if datasetID == "" {
		return nil, errors.New("empty dataset id")
	}
	if metricName == "" {
		return nil, errors.New("empty metric name")
	}
	var parameters []byte
	query := fmt.Sprintf(
		"SELECT parameters FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	if err := m.db.QueryRow(ctx, []any{&parameters}, query, appName, datasetID, metricName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, metricName, os.ErrNotExist)
		}
		return nil, fmt.Errorf("get metric %s.%s.%s: %w", appName, datasetID, metricName, err)
	}
	return &metric.Definition{
		MetricName: metricName,
		Parameters: parameters,
	}, nil
}

// Add inserts a new metric definition into MySQL.
func (m *manager) Add(ctx context.Context, appName, datasetID string, definition *metric.Definition) error {
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
	query := fmt.Sprintf(
		"INSERT INTO %s (app_name, dataset_id, metric_name, parameters) VALUES (?, ?, ?, ?)",
		m.tables.Metrics,
	)
	if _, err := m.db.Exec(ctx, query, appName, datasetID, definition.MetricName, parametersValue(definition)); err != nil {
		if mysqldb.IsDuplicateEntry(err) {
			return fmt.Errorf("metric %s.%s.%s already exists", appName, datasetID, definition.MetricName)
		}
		return fmt.Errorf("add metric %s.%s.%s: %w", appName, datasetID, definition.MetricName, err)
	}
	return nil
}

// Update updates an existing metric definition in MySQL.
func (m *manager) Update(ctx context.Context, appName, datasetID string, definition *metric.Definition) error {
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
	query := fmt.Sprintf(
		"UPDATE %s SET parameters = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	res, err := m.db.Exec(ctx, query, parametersValue(definition), appName, datasetID, definition.MetricName)
	if err != nil {
		return fmt.Errorf("update metric %s.%s.%s: %w", appName, datasetID, definition.MetricName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, definition.MetricName, os.ErrNotExist)
	}
	return nil
}

// Delete removes a metric definition from MySQL.
func (m *manager) Delete(ctx context.Context, appName, datasetID, metricName string) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if datasetID == "" {
		return errors.New("empty dataset id")
	}
	if metricName == "" {
		return errors.New("metric name is empty")
	}
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	res, err := m.db.Exec(ctx, query, appName, datasetID, metricName)
	if err != nil {
		return fmt.Errorf("delete metric %s.%s.%s: %w", appName, datasetID, metricName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("metric %s.%s.%s not found: %w", appName, datasetID, metricName, os.ErrNotExist)
	}
	return nil
}

// parametersValue maps empty parameters to NULL so the JSON column never
// receives an invalid empty document.
func parametersValue(definition *metric.Definition) any {
	if len(definition.Parameters) == 0 {
		return nil
	}
	return []byte(definition.Parameters)
}
