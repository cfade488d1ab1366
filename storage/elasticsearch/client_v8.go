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
	"bytes"
	"context"
	"fmt"
	"io"

	esv8 "github.com/elastic/go-elasticsearch/v8"
)

// clientV8 adapts a go-elasticsearch v8 client to the Client interface.
type clientV8 struct {
	esClient *esv8.Client
}

func newClientV8(o *ClientBuilderOpts) (Client, error) {
	es, err := esv8.NewClient(esv8.Config{
		Addresses:  o.Addresses,
		Username:   o.Username,
		Password:   o.Password,
		APIKey:     o.APIKey,
		MaxRetries: o.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	return &clientV8{esClient: es}, nil
}

// Ping checks connectivity with the cluster.
func (c *clientV8) Ping(ctx context.Context) error {
	res, err := c.esClient.Ping(c.esClient.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// IndexExists reports whether the index exists.
func (c *clientV8) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.esClient.Indices.Exists(
		[]string{index},
		c.esClient.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// CreateIndex creates an index with the given mapping body.
func (c *clientV8) CreateIndex(ctx context.Context, index string, body []byte) error {
	res, err := c.esClient.Indices.Create(
		index,
		c.esClient.Indices.Create.WithContext(ctx),
		c.esClient.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch failed to create index: %s", res.Status())
	}
	return nil
}

// IndexDoc indexes one document and refreshes the index.
func (c *clientV8) IndexDoc(ctx context.Context, index string, id string, doc []byte) error {
	res, err := c.esClient.Index(
		index,
		bytes.NewReader(doc),
		c.esClient.Index.WithContext(ctx),
		c.esClient.Index.WithDocumentID(id),
		c.esClient.Index.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch failed to index document: %s", res.Status())
	}
	return nil
}

// Search executes a raw search body and returns the raw response body.
func (c *clientV8) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	res, err := c.esClient.Search(
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(index),
		c.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s: %s", res.Status(), string(data))
	}
	return data, nil
}
