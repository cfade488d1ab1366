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
	"io"
	"net/http"
	"strings"
	"testing"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv8 "github.com/elastic/go-elasticsearch/v8"
	esv9 "github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripper allows mocking http.Transport.
type roundTripper func(*http.Request) *http.Response

func (f roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func newResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("X-Elastic-Product", "Elasticsearch")
	return resp
}

func TestSetGetClientBuilder(t *testing.T) {
	old := GetClientBuilder()
	defer func() { SetClientBuilder(old) }()

	called := false
	SetClientBuilder(func(opts ...ClientBuilderOpt) (Client, error) {
		called = true
		return nil, nil
	})

	b := GetClientBuilder()
	_, err := b(WithAddresses([]string{"http://es"}))
	require.NoError(t, err)
	require.True(t, called)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	// Isolate global state.
	old := esRegistry
	esRegistry = make(map[string][]ClientBuilderOpt)
	defer func() { esRegistry = old }()

	const name = "es"
	RegisterElasticsearchInstance(name,
		WithAddresses([]string{"http://a"}),
		WithUsername("u"),
	)

	opts, ok := GetElasticsearchInstance(name)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(opts), 2)

	cfg := &ClientBuilderOpts{}
	for _, opt := range opts {
		opt(cfg)
	}
	require.Equal(t, []string{"http://a"}, cfg.Addresses)
	require.Equal(t, "u", cfg.Username)
}

func TestRegistry_NotFound(t *testing.T) {
	old := esRegistry
	esRegistry = make(map[string][]ClientBuilderOpt)
	defer func() { esRegistry = old }()

	opts, ok := GetElasticsearchInstance("missing")
	require.False(t, ok)
	require.Nil(t, opts)
}

func TestDefaultClientBuilder_CreateClient(t *testing.T) {
	tests := []struct {
		name    string
		version ESVersion
		want    string
	}{
		{name: "unspecified defaults to v9", version: ESVersionUnspecified, want: "v9"},
		{name: "v9", version: ESVersionV9, want: "v9"},
		{name: "v8", version: ESVersionV8, want: "v8"},
		{name: "v7", version: ESVersionV7, want: "v7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DefaultClientBuilder(
				WithVersion(tt.version),
				WithAddresses([]string{"http://localhost:9200"}),
			)
			require.NoError(t, err)
			require.Equal(t, tt.want, clientTypeName(c))
		})
	}
}

func TestDefaultClientBuilder_UnknownVersion(t *testing.T) {
	_, err := DefaultClientBuilder(WithVersion(ESVersion(3)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown version")
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		client      any
		wantType    string
		wantErr     bool
		errContains string
	}{
		{
			name:     "elasticsearch v7 client",
			client:   &esv7.Client{},
			wantType: "v7",
		},
		{
			name:     "elasticsearch v8 client",
			client:   &esv8.Client{},
			wantType: "v8",
		},
		{
			name:     "elasticsearch v9 client",
			client:   &esv9.Client{},
			wantType: "v9",
		},
		{
			name:        "nil client input",
			client:      nil,
			wantErr:     true,
			errContains: "elasticsearch client is not supported, type: <nil>",
		},
		{
			name:        "unsupported string type",
			client:      "invalid",
			wantErr:     true,
			errContains: "elasticsearch client is not supported, type: string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.client)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errContains, err.Error())
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, clientTypeName(got))
		})
	}
}

// clientTypeName identifies which version adapter backs the client.
func clientTypeName(c Client) string {
	switch c.(type) {
	case *clientV7:
		return "v7"
	case *clientV8:
		return "v8"
	case *clientV9:
		return "v9"
	default:
		return "unknown"
	}
}

func TestClientV9_Ping_SuccessAndError(t *testing.T) {
	// Success.
	es, err := esv9.NewClient(esv9.Config{
		Addresses: []string{"http://x"},
		Transport: roundTripper(func(r *http.Request) *http.Response { return newResponse(200, "{}") }),
	})
	require.NoError(t, err)
	c := &clientV9{esClient: es}
	require.NoError(t, c.Ping(context.Background()))

	// Error.
	esErr, err := esv9.NewClient(esv9.Config{
		Addresses: []string{"http://x"},
		Transport: roundTripper(func(r *http.Request) *http.Response { return newResponse(500, "err") }),
	})
	require.NoError(t, err)
	c = &clientV9{esClient: esErr}
	err = c.Ping(context.Background())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "ping failed"))
}

func TestClientV8_Ping_SuccessAndError(t *testing.T) {
	// Success.
	es, err := esv8.NewClient(esv8.Config{
		Addresses: []string{"http://x"},
		Transport: roundTripper(func(r *http.Request) *http.Response { return newResponse(200, "{}") }),
	})
	require.NoError(t, err)
	c := &clientV8{esClient: es}
	require.NoError(t, c.Ping(context.Background()))

	// Error.
	esErr, err := esv8.NewClient(esv8.Config{
		Addresses: []string{"http://x"},
		Transport: roundTripper(func(r *http.Request) *http.Response { return newResponse(500, "err") }),
	})
	require.NoError(t, err)
	c = &clientV8{esClient: esErr}
	err = c.Ping(context.Background())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "ping failed"))
}

func TestClientV7_Ping_SuccessAndError(t *testing.T) {
	// Success.
	es, err := esv7.NewClient(esv7.Config{
		Addresses: []string{"http://x"},
		Transport: roundTripper(func(r *http.Request) *http.Response { return newResponse(200, "{}") }),
	})
	require.NoError(t, err)
	c := &clientV7{esClient: es}
	require.NoError(t, c.Ping(context.Background()))

	// Error.
	esErr, err := esv7.NewClient(esv7.Config{
		Addresses: []string{"http://x"},
		Transport: roundTripper(func(r *http.Request) *http.Response { return newResponse(500, "err") }),
	})
	require.NoError(t, err)
	c = &clientV7{esClient: esErr}
	err = c.Ping(context.Background())
	require.Error(t, err)
}

// indexTransport simulates the index lifecycle endpoints used by Client.
func indexTransport(docs map[string][]byte, indexExists *bool) roundTripper {
	return roundTripper(func(r *http.Request) *http.Response {
		p := r.URL.Path
		m := r.Method

		// HEAD /{index}.
		if m == http.MethodHead && !strings.Contains(p, "_doc") && !strings.Contains(p, "_search") {
			if *indexExists {
				return newResponse(http.StatusOK, "")
			}
			return newResponse(http.StatusNotFound, "")
		}
		// PUT /{index}.
		if m == http.MethodPut && !strings.Contains(p, "_doc") && !strings.Contains(p, "_search") {
			*indexExists = true
			return newResponse(http.StatusOK, `{}`)
		}
		// POST/PUT /{index}/_doc/{id}.
		if (m == http.MethodPost || m == http.MethodPut) && strings.Contains(p, "/_doc/") {
			b, _ := io.ReadAll(r.Body)
			parts := strings.Split(strings.Trim(p, "/"), "/")
			id := parts[len(parts)-1]
			docs[id] = b
			return newResponse(http.StatusOK, `{}`)
		}
		// POST/GET /{index}/_search.
		if strings.Contains(p, "_search") {
			return newResponse(http.StatusOK, `{"aggregations":{"avg_latency":{"value":0.5}}}`)
		}
		return newResponse(http.StatusOK, `{}`)
	})
}

func TestClientV9_IndexAndSearch(t *testing.T) {
	docs := make(map[string][]byte)
	indexExists := false

	es, err := esv9.NewClient(esv9.Config{
		Addresses: []string{"http://mock"},
		Transport: indexTransport(docs, &indexExists),
	})
	require.NoError(t, err)
	c := &clientV9{esClient: es}

	ctx := context.Background()
	exists, err := c.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, c.CreateIndex(ctx, "idx", []byte(`{"mappings":{}}`)))

	exists, err = c.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, c.IndexDoc(ctx, "idx", "1", []byte(`{"actual":1.0,"predicted":3.0}`)))
	require.Contains(t, string(docs["1"]), "actual")

	res, err := c.Search(ctx, "idx", []byte(`{"size":0}`))
	require.NoError(t, err)
	require.Contains(t, string(res), "aggregations")
}

func TestClientV8_IndexAndSearch(t *testing.T) {
	docs := make(map[string][]byte)
	indexExists := false

	es, err := esv8.NewClient(esv8.Config{
		Addresses: []string{"http://mock"},
		Transport: indexTransport(docs, &indexExists),
	})
	require.NoError(t, err)
	c := &clientV8{esClient: es}

	ctx := context.Background()
	require.NoError(t, c.CreateIndex(ctx, "idx", []byte(`{"mappings":{}}`)))
	require.NoError(t, c.IndexDoc(ctx, "idx", "1", []byte(`{"actual":1.0,"predicted":3.0}`)))
	res, err := c.Search(ctx, "idx", []byte(`{"size":0}`))
	require.NoError(t, err)
	require.Contains(t, string(res), "aggregations")
}

func TestClientV7_IndexAndSearch(t *testing.T) {
	docs := make(map[string][]byte)
	indexExists := false

	es, err := esv7.NewClient(esv7.Config{
		Addresses: []string{"http://mock"},
		Transport: indexTransport(docs, &indexExists),
	})
	require.NoError(t, err)
	c := &clientV7{esClient: es}

	ctx := context.Background()
	require.NoError(t, c.CreateIndex(ctx, "idx", []byte(`{"mappings":{}}`)))
	require.NoError(t, c.IndexDoc(ctx, "idx", "1", []byte(`{"actual":1.0,"predicted":3.0}`)))
	res, err := c.Search(ctx, "idx", []byte(`{"size":0}`))
	require.NoError(t, err)
	require.Contains(t, string(res), "aggregations")
}

func TestClientV9_SearchError(t *testing.T) {
	es, err := esv9.NewClient(esv9.Config{
		Addresses: []string{"http://mock"},
		Transport: roundTripper(func(r *http.Request) *http.Response {
			return newResponse(http.StatusBadRequest, `{"error":{"type":"search_phase_execution_exception"}}`)
		}),
	})
	require.NoError(t, err)
	c := &clientV9{esClient: es}

	_, err = c.Search(context.Background(), "idx", []byte(`{"size":0}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "search failed")
}
