//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package sqldb provides common utilities for SQL database-based persistence
// implementations.
package sqldb

import (
	"strings"
)

// MySQL error code constants
// These error codes are consistent across all MySQL versions and language settings.
const (
	// MySQLErrDuplicateKeyName is the error code when an index with the same name already exists
	// Error 1061: Duplicate key name
	MySQLErrDuplicateKeyName uint16 = 1061

	// MySQLErrDuplicateEntry is the error code when a duplicate entry violates a unique constraint
	// Error 1062: Duplicate entry for key
	MySQLErrDuplicateEntry uint16 = 1062
)

// BuildTableName constructs a full table name with optional prefix.
// If prefix is empty, returns the base table name.
// If prefix is provided, automatically adds an underscore separator if not present.
//
// Examples:
//   - BuildTableName("", "dataeval_metrics") -> "dataeval_metrics"
//   - BuildTableName("test", "dataeval_metrics") -> "test_dataeval_metrics"
//   - BuildTableName("test_", "dataeval_metrics") -> "test_dataeval_metrics"
func BuildTableName(prefix, base string) string {
	if prefix == "" {
		return base
	}

	// Automatically add underscore if not present
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	return prefix + base
}
