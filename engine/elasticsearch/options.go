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
	storage "trpc.group/trpc-go/trpc-dataeval-go/storage/elasticsearch"
)

// Option is the option for the Elasticsearch engine.
type Option func(*options)

type options struct {
	client       storage.Client
	instanceName string
	builderOpts  []storage.ClientBuilderOpt
}

func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClient injects a pre-built Elasticsearch client. Takes precedence over
// instance and builder options.
func WithClient(client storage.Client) Option {
	return func(o *options) { o.client = client }
}

// WithInstanceName selects a registered named Elasticsearch instance whose
// options seed the client builder.
func WithInstanceName(name string) Option {
	return func(o *options) { o.instanceName = name }
}

// WithClientBuilderOpts appends Elasticsearch client builder options. They
// are applied after any named instance options.
func WithClientBuilderOpts(opts ...storage.ClientBuilderOpt) Option {
	return func(o *options) { o.builderOpts = append(o.builderOpts, opts...) }
}
