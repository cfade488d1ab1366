//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IndexMapping defines the index mapping structure for evaluation datasets.
type IndexMapping struct {
	Mappings IndexMappings `json:"mappings"`
	Settings IndexSettings `json:"settings"`
}

// IndexMappings defines the mappings section of the index.
type IndexMappings struct {
	Properties map[string]FieldMapping `json:"properties"`
}

// IndexSettings defines the settings section of the index.
type IndexSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// FieldMapping defines a field mapping in Elasticsearch.
type FieldMapping struct {
	Type string `json:"type"`
}

// DatasetMapping builds a single-shard mapping that types every given field
// as a double. Suitable for small prediction datasets uploaded through
// UploadRows.
func DatasetMapping(fields ...string) *IndexMapping {
	properties := make(map[string]FieldMapping, len(fields))
	for _, field := range fields {
		properties[field] = FieldMapping{Type: "double"}
	}
	return &IndexMapping{
		Mappings: IndexMappings{Properties: properties},
		Settings: IndexSettings{
			NumberOfShards:   1,
			NumberOfReplicas: 0,
		},
	}
}

// UploadRows creates the index when missing and indexes one document per
// row with a generated ID. Rows are refreshed on write, so they are
// searchable as soon as UploadRows returns.
func (e *Engine) UploadRows(ctx context.Context, index string, mapping *IndexMapping, rows []map[string]any) error {
	exists, err := e.client.IndexExists(ctx, index)
	if err != nil {
		return fmt.Errorf("elasticsearch engine: check index %s: %w", index, err)
	}
	if !exists {
		mappingBytes, err := json.Marshal(mapping)
		if err != nil {
			return err
		}
		if err := e.client.CreateIndex(ctx, index, mappingBytes); err != nil {
			return fmt.Errorf("elasticsearch engine: create index %s: %w", index, err)
		}
	}

	for _, row := range rows {
		doc, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if err := e.client.IndexDoc(ctx, index, uuid.NewString(), doc); err != nil {
			return fmt.Errorf("elasticsearch engine: index row: %w", err)
		}
	}
	return nil
}
