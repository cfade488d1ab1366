//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

// Package elasticsearch provides the Elasticsearch client interface, its
// version-specific implementations and builder options.
package elasticsearch

import (
	"context"
	"fmt"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv8 "github.com/elastic/go-elasticsearch/v8"
	esv9 "github.com/elastic/go-elasticsearch/v9"
)

// Client is the version-independent Elasticsearch surface used by this
// module: index management for dataset preparation and search for running
// aggregations.
type Client interface {
	// Ping checks connectivity with the cluster.
	Ping(ctx context.Context) error
	// IndexExists reports whether the index exists.
	IndexExists(ctx context.Context, index string) (bool, error)
	// CreateIndex creates an index with the given mapping body.
	CreateIndex(ctx context.Context, index string, body []byte) error
	// IndexDoc indexes one document under the given ID and refreshes the
	// index so the document is immediately searchable.
	IndexDoc(ctx context.Context, index string, id string, doc []byte) error
	// Search executes a raw search body against the index and returns the
	// raw response body.
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

// DefaultClientBuilder selects the implementation by Version and builds a
// client. An unspecified version builds the newest supported client.
func DefaultClientBuilder(builderOpts ...ClientBuilderOpt) (Client, error) {
	o := &ClientBuilderOpts{}
	for _, opt := range builderOpts {
		opt(o)
	}

	switch o.Version {
	case ESVersionV7:
		return newClientV7(o)
	case ESVersionV8:
		return newClientV8(o)
	case ESVersionV9, ESVersionUnspecified:
		return newClientV9(o)
	default:
		return nil, fmt.Errorf("elasticsearch: unknown version %d", o.Version)
	}
}

// NewClient wraps a specific go-elasticsearch client (*v7/*v8/*v9) and
// returns a storage-level Client adapter.
func NewClient(client any) (Client, error) {
	switch cli := client.(type) {
	case *esv7.Client:
		return &clientV7{esClient: cli}, nil
	case *esv8.Client:
		return &clientV8{esClient: cli}, nil
	case *esv9.Client:
		return &clientV9{esClient: cli}, nil
	default:
		return nil, fmt.Errorf("elasticsearch client is not supported, type: %T", client)
	}
}
