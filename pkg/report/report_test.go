package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/schemafuzz/pkg/fuzzer"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/testutil"
	"github.com/waftester/schemafuzz/pkg/variation"
	"github.com/waftester/schemafuzz/pkg/writer"
)

func sampleSummary() *Summary {
	op := postman.NewOperation(&postman.Item{
		ID:      "createPetShortNameRequiredName",
		Name:    "Create pet[short][required name]",
		Request: &postman.Request{Method: "POST", URL: postman.ParseRawURL("{{baseUrl}}/pets")},
	})
	cfg := variation.Config{Name: "short"}
	cfg = variation.AddBodyOverwrite(cfg, variation.RemoveInstruction("name"))
	cfg = variation.AddQueryOverwrite(cfg, variation.OverwriteInstruction("limit", "0"))

	entries := []writer.Entry{
		{
			Operation: op,
			Source:    &openapi.MappedOperation{Method: "POST", Path: "/pets"},
			Config:    cfg,
			Test:      &variation.Test{OpenAPIOperation: "POST::/pets"},
		},
		{
			Operation: postman.NewOperation(&postman.Item{ID: "broken", Name: "broken | pipe"}),
			Err:       errors.New("writer: no request"),
		},
	}
	skipped := []fuzzer.Outcome{
		{Target: "requestBody", Category: variation.MaxLength, Field: fuzzer.Field{Path: "tag"}, Name: "z", Reason: fuzzer.ReasonEmptyValue},
		{Target: "requestBody", Category: variation.Minimum, Field: fuzzer.Field{Path: "age"}, Name: "a", Reason: fuzzer.ReasonMissingValue},
		{Target: "requestBody", Category: variation.Required, Field: fuzzer.Field{Path: "id"}, Name: "generated"},
	}
	return Build(entries, skipped, 3)
}

func TestBuild(t *testing.T) {
	s := sampleSummary()

	assert.Equal(t, 3, s.Operations)
	require.Len(t, s.Variations, 2)

	v := s.Variations[0]
	assert.Equal(t, "Create pet[short][required name]", v.Name)
	assert.Equal(t, "createPetShortNameRequiredName", v.ID)
	assert.Equal(t, "POST::/pets", v.Operation)
	assert.Equal(t, "POST::/pets", v.Test)
	assert.Equal(t, []Instruction{
		{Target: "body", Key: "name", Action: "remove"},
		{Target: "query", Key: "limit", Action: "overwrite", Value: "0"},
	}, v.Instructions)

	assert.Equal(t, "writer: no request", s.Variations[1].Error)
	assert.Empty(t, s.Variations[1].Instructions)
	assert.Equal(t, 1, s.Failed())

	// non-skip outcomes are dropped, skips sorted by name
	require.Len(t, s.Skipped, 2)
	assert.Equal(t, "a", s.Skipped[0].Name)
	assert.Equal(t, "minimum", s.Skipped[0].Category)
	assert.Equal(t, "age", s.Skipped[0].Field)
	assert.Equal(t, "value not found", s.Skipped[0].Reason)

	assert.Equal(t, []CategoryCount{{"minimum", 1}, {"maxLength", 1}}, s.SkipsByCategory())
}

func TestBuildEmpty(t *testing.T) {
	s := Build(nil, nil, 0)
	assert.NotNil(t, s.Variations)
	assert.NotNil(t, s.Skipped)
	assert.Zero(t, s.Failed())
	assert.Empty(t, s.SkipsByCategory())
}

func TestRenderText(t *testing.T) {
	r, err := NewRenderer(Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleSummary()))
	out := buf.String()

	assert.Contains(t, out, "Variations:  2 (1 partially applied)")
	assert.Contains(t, out, "Skipped:     2")
	assert.Contains(t, out, "Create pet[short][required name]")
	assert.Contains(t, out, "body remove name")
	assert.Contains(t, out, `query overwrite limit = "0"`)
	assert.Contains(t, out, "error: writer: no request")
	assert.Contains(t, out, "requestBody maxLength tag: empty value")
}

func TestRenderMarkdown(t *testing.T) {
	r, err := NewRenderer(Config{Format: FormatMarkdown})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleSummary()))
	out := buf.String()

	assert.Contains(t, out, "## Variations")
	assert.Contains(t, out, "`createPetShortNameRequiredName`")
	assert.Contains(t, out, `broken \| pipe`)
	assert.Contains(t, out, "body remove name<br>query overwrite limit")
	assert.Contains(t, out, "| requestBody | minimum | age | value not found |")
}

func TestRenderJSON(t *testing.T) {
	r, err := NewRenderer(Config{Format: FormatJSON})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleSummary()))

	var decoded struct {
		Tool       string `json:"tool"`
		Operations int    `json:"operations"`
		Variations []struct {
			ID           string           `json:"id"`
			Instructions []map[string]any `json:"instructions"`
		} `json:"variations"`
		Skipped []Skip `json:"skipped"`
	}
	require.NoError(t, jsonutil.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Operations)
	require.Len(t, decoded.Variations, 2)
	assert.Equal(t, "createPetShortNameRequiredName", decoded.Variations[0].ID)
	assert.NotContains(t, decoded.Variations[0].Instructions[0], "value")
	assert.Equal(t, "0", decoded.Variations[0].Instructions[1]["value"])
	assert.Len(t, decoded.Skipped, 2)
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ len .Variations | printf "%03d" }} {{ .Tool | upper }}`), 0o644))

	// template path wins over format
	r, err := NewRenderer(Config{Format: FormatJSON, TemplatePath: path})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleSummary()))
	assert.Equal(t, "002 SCHEMAFUZZ", buf.String())
}

func TestNewRendererErrors(t *testing.T) {
	_, err := NewRenderer(Config{Format: "html"})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = NewRenderer(Config{TemplatePath: filepath.Join(t.TempDir(), "missing.tmpl")})
	assert.ErrorIs(t, err, ErrTemplate)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ .Tool `), 0o644))
	_, err = NewRenderer(Config{TemplatePath: path})
	assert.ErrorIs(t, err, ErrTemplate)
}

func TestRenderExecuteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ .NoSuchField }}`), 0o644))
	r, err := NewRenderer(Config{TemplatePath: path})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, sampleSummary())
	assert.ErrorIs(t, err, ErrTemplate)
	assert.Zero(t, buf.Len())
}

func TestRenderWriteError(t *testing.T) {
	for _, f := range Formats() {
		r, err := NewRenderer(Config{Format: f})
		require.NoError(t, err)
		err = r.Render(&testutil.FailingWriter{Limit: 10}, sampleSummary())
		assert.ErrorIs(t, err, testutil.ErrFault, string(f))
	}
}

func TestRenderFile(t *testing.T) {
	r, err := NewRenderer(Config{Format: FormatJSON})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, r.RenderFile(path, sampleSummary()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, jsonutil.Valid(data))

	assert.Error(t, r.RenderFile(filepath.Join(t.TempDir(), "no", "dir", "r.json"), sampleSummary()))
}
