package suite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/metrics"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/testutil"
	"github.com/waftester/schemafuzz/pkg/variation"
)

const petsSpec = `openapi: 3.0.3
info:
  title: Pets
  version: "1"
servers:
  - url: https://api.example.com/v1/
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            minimum: 1
            maximum: 100
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          minLength: 2
          maxLength: 5
        age:
          type: integer
          minimum: 0
        tag:
          type: string
          maxLength: 3
`

const petsCollection = `{
  "info": {"name": "Pets", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"},
  "item": [
    {"name": "pets", "item": [
      {"id": "listPets", "name": "List pets", "request": {"method": "GET", "url": "{{baseUrl}}/pets?limit=10"}},
      {"id": "createPet", "name": "Create pet", "request": {
        "method": "POST",
        "body": {"mode": "raw", "raw": "{\"name\":\"rex\",\"age\":3}"},
        "url": "{{baseUrl}}/pets"
      }}
    ]},
    {"id": "health", "name": "Health", "request": {"method": "GET", "url": "{{baseUrl}}/health"}}
  ]
}`

const petsVariations = `variationTests:
  - openApiOperation: "*::/pets"
    variations:
      - name: fuzz
        fuzzing:
          - requestBody:
              - requiredFields: {enabled: true}
                minimumNumberFields: {enabled: true}
                minLengthFields: {enabled: true}
                maxLengthFields: {enabled: true}
            requestQueryParams:
              - minimumNumberFields: {enabled: true}
                maximumNumberFields: {enabled: true}
  - openApiOperationId: createPet
    variations:
      - name: ${VARIANT}
        overwrites:
          - overwriteRequestBody:
              - key: name
                remove: true
`

func writeInputs(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	return Sources{
		Spec:       write("pets.yaml", petsSpec),
		Collection: write("pets.postman_collection.json", petsCollection),
		Variations: write("fuzz.yaml", petsVariations),
		Lookup: func(name string) (string, bool) {
			if name == "VARIANT" {
				return "anonymous", true
			}
			return "", false
		},
	}
}

func names(res *Result) []string {
	out := make([]string, 0, len(res.Variations))
	for _, e := range res.Variations {
		out = append(out, e.Operation.Name())
	}
	return out
}

func TestLoad(t *testing.T) {
	in, err := Load(writeInputs(t))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", in.BaseURL)
	require.Len(t, in.Operations, 2)
	assert.Equal(t, "GET::/pets", in.Operations[0].PathRef())
	assert.Equal(t, "POST::/pets", in.Operations[1].PathRef())
	assert.Len(t, postman.Operations(in.Collection), 3)
	require.NotNil(t, in.Tests)
	assert.Equal(t, "anonymous", in.Tests.VariationTests[1].Variations[0].Name)
}

func TestLoadErrors(t *testing.T) {
	src := writeInputs(t)

	bad := src
	bad.Spec = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Load(bad)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad = src
	bad.Collection = src.Spec
	_, err = Load(bad)
	assert.ErrorIs(t, err, postman.ErrInvalidCollection)

	bad = src
	bad.Variations = src.Spec
	_, err = Load(bad)
	assert.ErrorIs(t, err, variation.ErrInvalidConfig)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("openapi: 3.0.0\ninfo: {title: x, version: '1'}\npaths: {}\n"), 0o644))
	bad = src
	bad.Spec = empty
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrNoOperations)
}

func TestRun(t *testing.T) {
	in, err := Load(writeInputs(t))
	require.NoError(t, err)

	rec, err := metrics.NewRecorder()
	require.NoError(t, err)
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	var started, completed []string
	r := &Runner{
		Recorder:         rec,
		Tracer:           tp.Tracer("test"),
		OnOperationStart: func(p Pair) { started = append(started, p.OpenAPI.OperationID) },
		OnOperationComplete: func(p Pair, n int) {
			completed = append(completed, p.OpenAPI.OperationID)
		},
	}
	res, err := r.Run(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Operations)
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t, []string{"listPets", "createPet"}, started)
	assert.Equal(t, started, completed)

	assert.Equal(t, []string{
		"List pets[fuzz][minimum number value limit]",
		"List pets[fuzz][maximum number value limit]",
		"Create pet[fuzz][required name]",
		"Create pet[fuzz][minimum number value age]",
		"Create pet[fuzz][minimum length name]",
		"Create pet[fuzz][maximum length name]",
		"Create pet[anonymous]",
	}, names(res))

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "tag", res.Skipped[0].Field.Path)
	assert.Len(t, res.Outcomes, 7)

	// base collection untouched, variations appended in their own folder
	assert.Len(t, in.Collection.Item, 2)
	require.Len(t, res.Collection.Item, 3)
	folder := res.Collection.Item[2]
	assert.Equal(t, defaults.VariationsFolder, folder.Name)
	assert.Len(t, folder.Item, 7)

	expected := `
# HELP schemafuzz_operations_total Total number of collection requests processed
# TYPE schemafuzz_operations_total counter
schemafuzz_operations_total{outcome="fuzzed"} 2
schemafuzz_operations_total{outcome="unmatched"} 1
# HELP schemafuzz_fields_skipped_total Total number of constrained fields that produced no variation
# TYPE schemafuzz_fields_skipped_total counter
schemafuzz_fields_skipped_total{category="maxLength",reason="value not found",target="requestBody"} 1
`
	assert.NoError(t, promtestutil.GatherAndCompare(rec.Gatherer(), strings.NewReader(expected),
		"schemafuzz_operations_total", "schemafuzz_fields_skipped_total"))

	spans := exp.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "schemafuzz.operation", spans[0].Name)
	assert.Equal(t, "schemafuzz.operation", spans[1].Name)
	assert.Equal(t, "schemafuzz.generate", spans[2].Name)
}

func TestRunSelectors(t *testing.T) {
	in, err := Load(writeInputs(t))
	require.NoError(t, err)

	res, err := (&Runner{Selectors: []string{"createPet"}}).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Operations)
	assert.Len(t, res.Variations, 5)

	res, err = (&Runner{Selectors: []string{"GET::/p*"}}).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Operations)
	assert.Len(t, res.Variations, 2)
}

func TestRunWithoutTests(t *testing.T) {
	in, err := Load(writeInputs(t))
	require.NoError(t, err)
	in.Tests = nil

	res, err := (&Runner{}).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Operations)
	assert.Empty(t, res.Variations)
	assert.Len(t, res.Collection.Item, 2)
}

func TestRunCancelled(t *testing.T) {
	in, err := Load(writeInputs(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{OnOperationComplete: func(Pair, int) { cancel() }}
	var res *Result
	testutil.AssertTimeout(t, "cancelled run", 2*time.Second, func() {
		res, err = r.Run(ctx, in)
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Operations)
	assert.Len(t, res.Variations, 2)
}

func TestSelects(t *testing.T) {
	op := &openapi.MappedOperation{Method: "POST", Path: "/pets/{id}", OperationID: "updatePet"}
	assert.True(t, Selects("updatePet", op))
	assert.True(t, Selects("POST::/pets/*", op))
	assert.True(t, Selects("*::/pets/{id}", op))
	assert.False(t, Selects("GET::/pets/*", op))
	assert.False(t, Selects("createPet", op))
	assert.False(t, Selects("", &openapi.MappedOperation{Method: "GET", Path: "/"}))
}

func TestPairs(t *testing.T) {
	mapped := []*openapi.MappedOperation{
		{Method: "GET", Path: "/pets/{id}"},
		{Method: "GET", Path: "/v1/pets/{id}"},
		{Method: "GET", Path: "/pets"},
	}
	ops := []*postman.Operation{
		postman.NewOperation(&postman.Item{Name: "a", Request: &postman.Request{Method: "get", URL: postman.ParseRawURL("{{baseUrl}}/v1/pets/:id")}}),
		postman.NewOperation(&postman.Item{Name: "b", Request: &postman.Request{Method: "GET", URL: postman.ParseRawURL("{{baseUrl}}/pets")}}),
		postman.NewOperation(&postman.Item{Name: "c", Request: &postman.Request{Method: "DELETE", URL: postman.ParseRawURL("{{baseUrl}}/pets")}}),
	}

	pairs := Pairs(mapped, ops)
	require.Len(t, pairs, 3)
	assert.Same(t, mapped[1], pairs[0].OpenAPI)
	assert.Same(t, mapped[2], pairs[1].OpenAPI)
	assert.Nil(t, pairs[2].OpenAPI)
}
