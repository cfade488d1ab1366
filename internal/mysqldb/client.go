//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package mysqldb provides shared MySQL plumbing for the persistence
// backends: client construction, schema bootstrap and error classification.
package mysqldb

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"trpc.group/trpc-go/trpc-dataeval-go/internal/sqldb"
	storage "trpc.group/trpc-go/trpc-dataeval-go/storage/mysql"
)

// BuildClient builds a MySQL client with either DSN or a registered instance name.
func BuildClient(dsn, instanceName string, extraOptions []any) (storage.Client, error) {
	builderOpts := []storage.ClientBuilderOpt{
		storage.WithClientBuilderDSN(dsn),
		storage.WithExtraOptions(extraOptions...),
	}
	// Priority: dsn > instanceName.
	if dsn == "" && instanceName != "" {
		var ok bool
		if builderOpts, ok = storage.GetMySQLInstance(instanceName); !ok {
			return nil, fmt.Errorf("mysql instance %s not found", instanceName)
		}
	}
	return storage.GetClientBuilder()(builderOpts...)
}

// IsDuplicateEntry reports whether the error is a MySQL duplicate entry error.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == sqldb.MySQLErrDuplicateEntry
}

// IsDuplicateKeyName reports whether the error is a MySQL duplicate key name
// error, raised when creating an index that already exists.
func IsDuplicateKeyName(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == sqldb.MySQLErrDuplicateKeyName
}
