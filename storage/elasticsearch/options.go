//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package elasticsearch

func init() {
	esRegistry = make(map[string][]ClientBuilderOpt)
}

// esRegistry stores named Elasticsearch instance builder options.
var esRegistry map[string][]ClientBuilderOpt

// clientBuilder builds an Elasticsearch Client from builder options.
type clientBuilder func(builderOpts ...ClientBuilderOpt) (Client, error)

// globalBuilder is the function used to build Elasticsearch clients.
var globalBuilder clientBuilder = DefaultClientBuilder

// SetClientBuilder sets the global Elasticsearch client builder.
func SetClientBuilder(builder clientBuilder) {
	globalBuilder = builder
}

// GetClientBuilder gets the global Elasticsearch client builder.
func GetClientBuilder() clientBuilder { return globalBuilder }

// RegisterElasticsearchInstance registers builder options for a named
// Elasticsearch instance.
func RegisterElasticsearchInstance(name string, opts ...ClientBuilderOpt) {
	esRegistry[name] = append(esRegistry[name], opts...)
}

// GetElasticsearchInstance gets the registered options for a named instance.
func GetElasticsearchInstance(name string) ([]ClientBuilderOpt, bool) {
	if _, ok := esRegistry[name]; !ok {
		return nil, false
	}
	return esRegistry[name], true
}

// ClientBuilderOpt is the option for the Elasticsearch client builder.
type ClientBuilderOpt func(*ClientBuilderOpts)

// ClientBuilderOpts is the options for the Elasticsearch client builder.
type ClientBuilderOpts struct {
	// Addresses is the list of node addresses.
	Addresses []string
	// Username is the username for basic authentication.
	Username string
	// Password is the password for basic authentication.
	Password string
	// APIKey is the base64-encoded authorization token. Takes precedence
	// over basic authentication when set.
	APIKey string
	// MaxRetries is the maximum number of request retries. Zero keeps the
	// driver default.
	MaxRetries int

	// Version allows selecting the target Elasticsearch major version.
	// Defaults to ESVersionUnspecified which implies the newest supported.
	Version ESVersion

	// ExtraOptions allows custom builders to accept extra parameters.
	ExtraOptions []any
}

// WithAddresses sets the node addresses.
func WithAddresses(addresses []string) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) { o.Addresses = addresses }
}

// WithUsername sets the username for basic authentication.
func WithUsername(username string) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) { o.Username = username }
}

// WithPassword sets the password for basic authentication.
func WithPassword(password string) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) { o.Password = password }
}

// WithAPIKey sets the base64-encoded authorization token.
func WithAPIKey(apiKey string) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) { o.APIKey = apiKey }
}

// WithMaxRetries sets the maximum number of request retries.
func WithMaxRetries(maxRetries int) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) { o.MaxRetries = maxRetries }
}

// WithVersion sets the preferred Elasticsearch major version.
func WithVersion(v ESVersion) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) { o.Version = v }
}

// WithExtraOptions adds extra, builder-specific options.
func WithExtraOptions(extraOptions ...any) ClientBuilderOpt {
	return func(o *ClientBuilderOpts) {
		o.ExtraOptions = append(o.ExtraOptions, extraOptions...)
	}
}

// ESVersion represents the Elasticsearch major version.
type ESVersion int

const (
	// ESVersionUnspecified means no explicit version preference.
	ESVersionUnspecified ESVersion = 0
	// ESVersionV7 selects Elasticsearch v7.
	ESVersionV7 ESVersion = 7
	// ESVersionV8 selects Elasticsearch v8.
	ESVersionV8 ESVersion = 8
	// ESVersionV9 selects Elasticsearch v9.
	ESVersionV9 ESVersion = 9
)
