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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"trpc.group/trpc-go/trpc-dataeval-go/internal/mysqldb"
	"trpc.group/trpc-go/trpc-dataeval-go/internal/sqldb"
	"trpc.group/trpc-go/trpc-dataeval-go/metric"
	"trpc.group/trpc-go/trpc-dataeval-go/metric/msle"
	storage "trpc.group/trpc-go/trpc-dataeval-go/storage/mysql"
)

func newMetricManager(t *testing.T) (*manager, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	m := &manager{
		db:     storage.WrapSQLDB(db),
		tables: mysqldb.BuildTables("test_"),
	}
	return m, db, mock
}

func TestNew_SkipDBInit(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	oldBuilder := storage.GetClientBuilder()
	storage.SetClientBuilder(func(builderOpts ...storage.ClientBuilderOpt) (storage.Client, error) {
		o := &storage.ClientBuilderOpts{}
		for _, opt := range builderOpts {
			opt(o)
		}
		assert.Equal(t, "dsn", o.DSN)
		return storage.WrapSQLDB(db), nil
	})
	t.Cleanup(func() { storage.SetClientBuilder(oldBuilder) })

	m, err := New(
		WithMySQLClientDSN("dsn"),
		WithSkipDBInit(true),
		WithTablePrefix("test_"),
		WithInitTimeout(-1),
	)
	assert.NoError(t, err)
	mock.ExpectClose()
	assert.NoError(t, m.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_BuildClientError(t *testing.T) {
	oldBuilder := storage.GetClientBuilder()
	storage.SetClientBuilder(func(builderOpts ...storage.ClientBuilderOpt) (storage.Client, error) {
		return nil, errors.New("boom")
	})
	t.Cleanup(func() { storage.SetClientBuilder(oldBuilder) })

	_, err := New(WithMySQLClientDSN("dsn"), WithSkipDBInit(true))
	assert.Error(t, err)
}

func TestNew_DBInitFailureClosesClient(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	oldBuilder := storage.GetClientBuilder()
	storage.SetClientBuilder(func(builderOpts ...storage.ClientBuilderOpt) (storage.Client, error) {
		return storage.WrapSQLDB(db), nil
	})
	t.Cleanup(func() { storage.SetClientBuilder(oldBuilder) })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS\\s+" + regexp.QuoteMeta("test_dataeval_metrics")).
		WillReturnError(errors.New("boom"))
	mock.ExpectClose()

	_, err = New(WithMySQLClientDSN("dsn"), WithTablePrefix("test_"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_NilClient(t *testing.T) {
	m := &manager{}
	assert.NoError(t, m.Close())
}

func TestOptions(t *testing.T) {
	opts := newOptions(
		WithMySQLClientDSN("dsn"),
		WithMySQLInstance("instance"),
		WithExtraOptions("x"),
		WithSkipDBInit(true),
		WithTablePrefix("test_"),
		WithTablePrefix(""),
		WithInitTimeout(time.Second),
		WithInitTimeout(-1),
	)
	assert.Equal(t, "dsn", opts.dsn)
	assert.Equal(t, "instance", opts.instanceName)
	assert.Equal(t, []any{"x"}, opts.extraOptions)
	assert.True(t, opts.skipDBInit)
	assert.Equal(t, "", opts.tablePrefix)
	assert.Equal(t, time.Second, opts.initTimeout)
}

func TestValidationErrors(t *testing.T) {
	ctx := context.Background()
	m := &manager{}

	_, err := m.List(ctx, "", "dataset")
	assert.Error(t, err)

	_, err = m.List(ctx, "app", "")
	assert.Error(t, err)

	_, err = m.Get(ctx, "", "dataset", "m1")
	assert.Error(t, err)

	_, err = m.Get(ctx, "app", "", "m1")
	assert.Error(t, err)

	_, err = m.Get(ctx, "app", "dataset", "")
	assert.Error(t, err)

	err = m.Add(ctx, "", "dataset", &metric.Definition{MetricName: "m1"})
	assert.Error(t, err)

	err = m.Add(ctx, "app", "", &metric.Definition{MetricName: "m1"})
	assert.Error(t, err)

	err = m.Add(ctx, "app", "dataset", nil)
	assert.Error(t, err)

	err = m.Add(ctx, "app", "dataset", &metric.Definition{})
	assert.Error(t, err)

	err = m.Update(ctx, "", "dataset", &metric.Definition{MetricName: "m1"})
	assert.Error(t, err)

	err = m.Update(ctx, "app", "", &metric.Definition{MetricName: "m1"})
	assert.Error(t, err)

	err = m.Update(ctx, "app", "dataset", nil)
	assert.Error(t, err)

	err = m.Update(ctx, "app", "dataset", &metric.Definition{})
	assert.Error(t, err)

	err = m.Delete(ctx, "", "dataset", "m1")
	assert.Error(t, err)

	err = m.Delete(ctx, "app", "", "m1")
	assert.Error(t, err)

	err = m.Delete(ctx, "app", "dataset", "")
	assert.Error(t, err)
}

func TestList_ReturnsMetricNames(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	query := fmt.Sprintf(
		"SELECT metric_name FROM %s WHERE app_name = ? AND dataset_id = ? ORDER BY metric_name ASC",
		m.tables.Metrics,
	)
	rows := sqlmock.NewRows([]string{"metric_name"}).
		AddRow("m1").
		AddRow("m2")
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("app", "dataset").
		WillReturnRows(rows)

	names, err := m.List(ctx, "app", "dataset")
	assert.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_EmptyReturnsEmptySlice(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	query := fmt.Sprintf(
		"SELECT metric_name FROM %s WHERE app_name = ? AND dataset_id = ? ORDER BY metric_name ASC",
		m.tables.Metrics,
	)
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("app", "dataset").
		WillReturnRows(sqlmock.NewRows([]string{"metric_name"}))

	names, err := m.List(ctx, "app", "dataset")
	assert.NoError(t, err)
	assert.Equal(t, []string{}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Add_Update_Delete(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	getSQL := fmt.Sprintf(
		"SELECT parameters FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("app", "dataset", msle.Name).
		WillReturnRows(sqlmock.NewRows([]string{"parameters"}).AddRow([]byte(`{"offset": 0.5}`)))

	got, err := m.Get(ctx, "app", "dataset", msle.Name)
	assert.NoError(t, err)
	assert.Equal(t, msle.Name, got.MetricName)
	assert.Equal(t, json.RawMessage(`{"offset": 0.5}`), got.Parameters)

	addSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, dataset_id, metric_name, parameters) VALUES (?, ?, ?, ?)",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(addSQL)).
		WithArgs("app", "dataset", msle.Name, []byte(`{"offset": 0.5}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = m.Add(ctx, "app", "dataset", &metric.Definition{
		MetricName: msle.Name,
		Parameters: json.RawMessage(`{"offset": 0.5}`),
	})
	assert.NoError(t, err)

	updateSQL := fmt.Sprintf(
		"UPDATE %s SET parameters = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs([]byte(`{"offset": 2}`), "app", "dataset", msle.Name).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = m.Update(ctx, "app", "dataset", &metric.Definition{
		MetricName: msle.Name,
		Parameters: json.RawMessage(`{"offset": 2}`),
	})
	assert.NoError(t, err)

	deleteSQL := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
		WithArgs("app", "dataset", msle.Name).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = m.Delete(ctx, "app", "dataset", msle.Name)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NullParameters(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	getSQL := fmt.Sprintf(
		"SELECT parameters FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("app", "dataset", msle.Name).
		WillReturnRows(sqlmock.NewRows([]string{"parameters"}).AddRow(nil))

	got, err := m.Get(ctx, "app", "dataset", msle.Name)
	assert.NoError(t, err)
	assert.Equal(t, msle.Name, got.MetricName)
	assert.Nil(t, got.Parameters)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_EmptyParametersStoredAsNull(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	addSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, dataset_id, metric_name, parameters) VALUES (?, ?, ?, ?)",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(addSQL)).
		WithArgs("app", "dataset", msle.Name, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := m.Add(ctx, "app", "dataset", &metric.Definition{MetricName: msle.Name})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	getSQL := fmt.Sprintf(
		"SELECT parameters FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("app", "dataset", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := m.Get(ctx, "app", "dataset", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	updateSQL := fmt.Sprintf(
		"UPDATE %s SET parameters = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(sqlmock.AnyArg(), "app", "dataset", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := m.Update(ctx, "app", "dataset", &metric.Definition{
		MetricName: "missing",
		Parameters: json.RawMessage(`{}`),
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	deleteSQL := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND dataset_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
		WithArgs("app", "dataset", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = m.Delete(ctx, "app", "dataset", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_DuplicateEntry(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newMetricManager(t)
	t.Cleanup(func() { _ = db.Close() })

	addSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, dataset_id, metric_name, parameters) VALUES (?, ?, ?, ?)",
		m.tables.Metrics,
	)
	mock.ExpectExec(regexp.QuoteMeta(addSQL)).
		WithArgs("app", "dataset", msle.Name, sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: sqldb.MySQLErrDuplicateEntry, Message: "Duplicate entry"})

	err := m.Add(ctx, "app", "dataset", &metric.Definition{MetricName: msle.Name})
	assert.Error(t, err)
	assert.ErrorContains(t, err, "already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}
