//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package mysqldb

import (
	"context"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-dataeval-go/internal/sqldb"
	storage "trpc.group/trpc-go/trpc-dataeval-go/storage/mysql"
)

// TableNameMetrics is the base table name for metric definitions.
const TableNameMetrics = "dataeval_metrics"

// Tables holds fully qualified table names with the configured prefix applied.
type Tables struct {
	Metrics string
}

// BuildTables builds table names with the given prefix.
func BuildTables(prefix string) Tables {
	return Tables{
		Metrics: sqldb.BuildTableName(prefix, TableNameMetrics),
	}
}

type tableDefinition struct {
	name     string
	template string
}

type indexDefinition struct {
	table    string
	name     string
	template string
}

// EnsureSchema creates the metric definition tables if they do not exist.
// Index creation tolerates indexes that already exist.
func EnsureSchema(ctx context.Context, db storage.Client, tables Tables) error {
	tableDefs := []tableDefinition{
		{name: tables.Metrics, template: sqlCreateMetricsTable},
	}
	indexDefs := []indexDefinition{
		{table: tables.Metrics, name: "uniq_metrics_app_dataset_name", template: sqlCreateMetricsUniqueIndex},
		{table: tables.Metrics, name: "idx_metrics_app_dataset", template: sqlCreateMetricsAppDatasetIndex},
	}

	for _, tableDef := range tableDefs {
		query := strings.ReplaceAll(tableDef.template, "{{TABLE_NAME}}", tableDef.name)
		if _, err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("create table %s failed: %w", tableDef.name, err)
		}
	}

	for _, indexDef := range indexDefs {
		query := strings.ReplaceAll(indexDef.template, "{{TABLE_NAME}}", indexDef.table)
		query = strings.ReplaceAll(query, "{{INDEX_NAME}}", indexDef.name)
		if _, err := db.Exec(ctx, query); err != nil {
			if IsDuplicateKeyName(err) {
				continue
			}
			return fmt.Errorf("create index %s on table %s failed: %w", indexDef.name, indexDef.table, err)
		}
	}
	return nil
}

const (
	sqlCreateMetricsTable = `
		CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
			id BIGINT NOT NULL AUTO_INCREMENT,
			app_name VARCHAR(255) NOT NULL,
			dataset_id VARCHAR(255) NOT NULL,
			metric_name VARCHAR(255) NOT NULL,
			parameters JSON NULL,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

	sqlCreateMetricsUniqueIndex = `
		CREATE UNIQUE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, dataset_id, metric_name)`

	sqlCreateMetricsAppDatasetIndex = `
		CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, dataset_id)`
)
