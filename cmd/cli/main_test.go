package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/waftester/schemafuzz/pkg/config"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/fuzzer"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/suite"
	"github.com/waftester/schemafuzz/pkg/ui"
	"github.com/waftester/schemafuzz/pkg/variation"
)

const usersSpec = `openapi: 3.0.3
info: {title: Users, version: "1"}
servers:
  - url: https://users.example.com
paths:
  /users:
    post:
      operationId: createUser
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [login]
              properties:
                login: {type: string, minLength: 3, maxLength: 8}
                age: {type: integer, minimum: 18, maximum: 120}
`

const usersCollection = `{
  "info": {"name": "Users", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"},
  "item": [
    {"id": "createUser", "name": "Create user", "request": {
      "method": "POST",
      "body": {"mode": "raw", "raw": "{\"login\":\"alice\",\"age\":30}"},
      "url": "{{baseUrl}}/users"
    }}
  ]
}`

const usersVariations = `variationTests:
  - openApiOperationId: createUser
    variations:
      - name: ${TEST_NAME}
        fuzzing:
          - requestBody:
              - requiredFields: {enabled: true}
                minimumNumberFields: {enabled: true}
                maximumNumberFields: {enabled: true}
`

type fixture struct {
	dir        string
	spec       string
	collection string
	variations string
	output     string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	return fixture{
		dir:        dir,
		spec:       write("users.yaml", usersSpec),
		collection: write("users.json", usersCollection),
		variations: write("fuzz.yaml", usersVariations),
		output:     filepath.Join(dir, "out.json"),
	}
}

func (f fixture) args(extra ...string) []string {
	args := []string{"generate",
		"-spec", f.spec,
		"-collection", f.collection,
		"-config", f.variations,
		"-output", f.output,
		"-silent",
	}
	return append(args, extra...)
}

// quiet routes console output into a buffer for the duration of the test.
func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ui.SetOutput(&buf)
	t.Cleanup(func() {
		ui.SetOutput(prev)
		ui.SetSilent(false)
	})
	return &buf
}

func TestRunNoArgs(t *testing.T) {
	quiet(t)
	var out bytes.Buffer
	assert.Equal(t, defaults.ExitUserError, run(nil, &out))
	assert.Contains(t, out.String(), "generate")
}

func TestRunUnknownCommand(t *testing.T) {
	console := quiet(t)
	var out bytes.Buffer
	assert.Equal(t, defaults.ExitUserError, run([]string{"fuzz-everything"}, &out))
	assert.Contains(t, console.String(), `unknown command "fuzz-everything"`)
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, defaults.ExitSuccess, run([]string{"version"}, &out))
	assert.Contains(t, out.String(), defaults.ToolName)
	assert.Contains(t, out.String(), ui.Version)
}

func TestGenerate(t *testing.T) {
	quiet(t)
	t.Setenv("TEST_NAME", "boundaries")
	f := newFixture(t)
	env := filepath.Join(f.dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("TEST_NAME=limits\n"), 0o644))
	metricsFile := filepath.Join(f.dir, "fuzz.prom")

	var out bytes.Buffer
	code := run(f.args("-env-file", env, "-format", "json", "-metrics", metricsFile), &out)
	require.Equal(t, defaults.ExitSuccess, code)

	// the dotenv value wins over the process environment
	report := out.String()
	require.True(t, gjson.Valid(report), report)
	assert.Equal(t, int64(1), gjson.Get(report, "operations").Int())
	assert.Equal(t, []string{
		"Create user[limits][required login]",
		"Create user[limits][minimum number value age]",
		"Create user[limits][maximum number value age]",
	}, stringArray(gjson.Get(report, "variations.#.name")))
	assert.Equal(t, "remove", gjson.Get(report, "variations.0.instructions.0.action").String())
	assert.Equal(t, float64(17), gjson.Get(report, "variations.1.instructions.0.value").Float())
	assert.Equal(t, float64(121), gjson.Get(report, "variations.2.instructions.0.value").Float())

	col, err := postman.ParseFile(f.output)
	require.NoError(t, err)
	require.Len(t, col.Item, 2)
	assert.Equal(t, defaults.VariationsFolder, col.Item[1].Name)
	assert.Len(t, col.Item[1].Item, 3)
	assert.Contains(t, col.Variable, postman.Variable{Key: "baseUrl", Value: "https://users.example.com"})

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "schemafuzz_operations_total")
}

func TestGenerateNoVariations(t *testing.T) {
	quiet(t)
	f := newFixture(t)
	var out bytes.Buffer
	code := run(f.args("-operation", "GET::/nothing", "-report", ""), &out)
	assert.Equal(t, defaults.ExitNoVariations, code)
	assert.Empty(t, out.String())
	assert.FileExists(t, f.output)
}

func TestGenerateErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing spec", []string{"generate", "-collection", f.collection, "-config", f.variations, "-output", f.output}, defaults.ExitUserError},
		{"unknown flag", f.args("-bogus"), defaults.ExitUserError},
		{"bad format", f.args("-format", "pdf"), defaults.ExitUserError},
		{"missing template", f.args("-template", filepath.Join(f.dir, "none.tmpl")), defaults.ExitUserError},
		{"missing collection", f.args("-collection", filepath.Join(f.dir, "none.json")), defaults.ExitInputError},
		{"collection is yaml", f.args("-collection", f.spec), defaults.ExitInputError},
		{"output over input", f.args("-output", f.collection), defaults.ExitUserError},
		{"help", []string{"generate", "-h"}, defaults.ExitSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiet(t)
			var out bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, &out))
		})
	}
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)

	var out bytes.Buffer
	require.Equal(t, defaults.ExitSuccess, run([]string{"analyze", "-spec", f.spec, "-json"}, &out))
	rows := out.String()
	require.True(t, gjson.Valid(rows), rows)
	assert.Equal(t, []string{"required", "minimum", "maximum", "minLength", "maxLength"},
		stringArray(gjson.Get(rows, "#.category")))
	assert.Equal(t, "3", gjson.Get(rows, `#(category=="minLength").bound`).String())
	assert.Equal(t, "createUser", gjson.Get(rows, "0.operationId").String())

	out.Reset()
	require.Equal(t, defaults.ExitSuccess, run([]string{"analyze", "-spec", f.spec, "-no-color"}, &out))
	assert.Contains(t, out.String(), "POST::/users (createUser)")
	assert.Contains(t, out.String(), "login")

	out.Reset()
	require.Equal(t, defaults.ExitSuccess, run([]string{"analyze", "-spec", f.spec, "-operation", "GET::/*", "-json"}, &out))
	assert.Equal(t, "[]\n", out.String())
}

func TestAnalyzeMissingSpec(t *testing.T) {
	quiet(t)
	var out bytes.Buffer
	assert.Equal(t, defaults.ExitUserError, run([]string{"analyze"}, &out))
	assert.Equal(t, defaults.ExitInputError, run([]string{"analyze", "-spec", filepath.Join(t.TempDir(), "x.yaml")}, &out))
}

func TestDynvars(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, defaults.ExitSuccess, run([]string{"dynvars", "-json"}, &out))
	require.True(t, gjson.Valid(out.String()))
	assert.Contains(t, stringArray(gjson.Get(out.String(), "#.token")), "{{$guid}}")

	out.Reset()
	require.Equal(t, defaults.ExitSuccess, run([]string{"dynvars"}, &out))
	assert.Contains(t, out.String(), "{{$randomInt}}")
}

func TestInit(t *testing.T) {
	quiet(t)
	f := newFixture(t)
	path := filepath.Join(f.dir, "starter.yaml")

	var out bytes.Buffer
	require.Equal(t, defaults.ExitSuccess, run([]string{"init", "-o", path}, &out))
	assert.FileExists(t, path)
	assert.Equal(t, defaults.ExitUserError, run([]string{"init", "-o", path}, &out))
	assert.Equal(t, defaults.ExitSuccess, run([]string{"init", "-o", path, "-force"}, &out))

	require.Equal(t, defaults.ExitSuccess, run([]string{"init", "-o", "-"}, &out))
	assert.Contains(t, out.String(), "variationTests:")

	// the starter file drives a real run
	out.Reset()
	f.variations = path
	require.Equal(t, defaults.ExitSuccess, run(f.args("-format", "json"), &out))
	assert.Equal(t, int64(5), gjson.Get(out.String(), "variations.#").Int())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, defaults.ExitSuccess},
		{flag.ErrHelp, defaults.ExitSuccess},
		{fmt.Errorf("%w: -spec", config.ErrMissingRequired), defaults.ExitUserError},
		{fmt.Errorf("load: %w", variation.ErrInvalidConfig), defaults.ExitUserError},
		{fmt.Errorf("x: %w", os.ErrNotExist), defaults.ExitInputError},
		{openapi.ErrUnsupportedVersion, defaults.ExitInputError},
		{suite.ErrNoOperations, defaults.ExitInputError},
		{fmt.Errorf("suite: run cancelled: %w", context.Canceled), defaults.ExitInterrupted},
		{errors.New("boom"), defaults.ExitInternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, exitCode(tt.err), "%v", tt.err)
	}
}

func TestCategoryStats(t *testing.T) {
	stats := categoryStats([]fuzzer.Outcome{
		{Category: variation.MaxLength, Reason: fuzzer.ReasonMissingValue},
		{Category: variation.Required},
		{Category: variation.MaxLength},
		{Category: variation.Required},
	})
	assert.Equal(t, []ui.CategoryStat{
		{Category: "required", Variations: 2},
		{Category: "maxLength", Variations: 1, Skipped: 1},
	}, stats)
}

func TestEnvLookup(t *testing.T) {
	t.Setenv("FROM_PROCESS", "p")
	lookup, err := envLookup("")
	require.NoError(t, err)
	v, ok := lookup("FROM_PROCESS")
	assert.True(t, ok)
	assert.Equal(t, "p", v)

	_, err = envLookup(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func stringArray(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}
