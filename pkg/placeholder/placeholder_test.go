package placeholder

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func newTestEngine(seed uint64) *Engine {
	return NewEngine(nil,
		WithRand(rand.New(rand.NewPCG(seed, seed))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "{{", cfg.Prefix)
	assert.Equal(t, "}}", cfg.Suffix)
	assert.Equal(t, "$", cfg.Sigil)
}

func TestResolveUnchanged(t *testing.T) {
	e := newTestEngine(1)
	for _, v := range []string{"plain", "", "{{ unterminated", "only }} closing"} {
		res := e.Resolve(v)
		assert.Equal(t, Unchanged, res.Outcome, v)
		assert.Equal(t, v, res.Value)
		assert.False(t, res.Skipped())
	}
}

func TestResolveUserVariableSkips(t *testing.T) {
	e := newTestEngine(1)

	res := e.Resolve("{{userName}}")
	assert.True(t, res.Skipped())
	assert.Equal(t, ReasonUserVariable, res.Reason)
	assert.Equal(t, "{{userName}}", res.Token)
	assert.Equal(t, "{{userName}}", res.Value)

	res = e.Resolve("{{$guid}}-{{tenant}}")
	assert.True(t, res.Skipped(), "one plain variable spoils the whole value")
	assert.Equal(t, "{{tenant}}", res.Token)
}

func TestResolveUnknownGeneratorSkips(t *testing.T) {
	res := newTestEngine(1).Resolve("{{$noSuchThing}}")
	assert.True(t, res.Skipped())
	assert.Equal(t, ReasonUnknownGenerator, res.Reason)
}

func TestResolveGenerators(t *testing.T) {
	e := newTestEngine(7)

	tests := []struct {
		token string
		check func(t *testing.T, v string)
	}{
		{"{{$guid}}", func(t *testing.T, v string) {
			_, err := uuid.Parse(v)
			assert.NoError(t, err)
		}},
		{"{{$randomUUID}}", func(t *testing.T, v string) {
			id, err := uuid.Parse(v)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(4), id.Version())
		}},
		{"{{$timestamp}}", func(t *testing.T, v string) {
			assert.Equal(t, strconv.FormatInt(fixedNow.Unix(), 10), v)
		}},
		{"{{$isoTimestamp}}", func(t *testing.T, v string) {
			assert.Equal(t, "2024-03-01T12:30:00.000Z", v)
		}},
		{"{{$randomInt}}", func(t *testing.T, v string) {
			n, err := strconv.Atoi(v)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 0)
			assert.LessOrEqual(t, n, 1000)
		}},
		{"{{$randomBoolean}}", func(t *testing.T, v string) {
			assert.Contains(t, []string{"true", "false"}, v)
		}},
		{"{{$randomAlphaNumeric}}", func(t *testing.T, v string) {
			assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]$`), v)
		}},
		{"{{$randomEmail}}", func(t *testing.T, v string) {
			assert.Regexp(t, regexp.MustCompile(`^[a-z]+\.[a-z]+@example\.(com|net|org)$`), v)
		}},
		{"{{$randomIP}}", func(t *testing.T, v string) {
			assert.Regexp(t, regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`), v)
		}},
		{"{{$randomHexColor}}", func(t *testing.T, v string) {
			assert.Regexp(t, regexp.MustCompile(`^#[0-9a-f]{6}$`), v)
		}},
		{"{{ $randomPassword }}", func(t *testing.T, v string) {
			assert.Len(t, v, 15)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			res := e.Resolve(tt.token)
			require.Equal(t, Resolved, res.Outcome)
			assert.NotContains(t, res.Value, "{{")
			tt.check(t, res.Value)
		})
	}
}

func TestResolveEmbedded(t *testing.T) {
	res := newTestEngine(3).Resolve("user-{{$timestamp}}@x")
	require.Equal(t, Resolved, res.Outcome)
	assert.Equal(t, "user-"+strconv.FormatInt(fixedNow.Unix(), 10)+"@x", res.Value)
}

func TestResolveDeterministicWithSeed(t *testing.T) {
	a := newTestEngine(42).Resolve("{{$randomFullName}} {{$guid}}")
	b := newTestEngine(42).Resolve("{{$randomFullName}} {{$guid}}")
	assert.Equal(t, a.Value, b.Value)
}

func TestRegisterAndList(t *testing.T) {
	e := newTestEngine(1)
	e.Register(Generator{Name: "tenant", Description: "fixed tenant", Generate: func(*Source) string { return "acme" }})

	g, ok := e.Get("$tenant")
	require.True(t, ok)
	assert.Equal(t, "fixed tenant", g.Description)
	assert.Equal(t, "acme", e.Resolve("{{$tenant}}").Value)

	list := e.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
	assert.Equal(t, "{{$tenant}}", e.Token("tenant"))
}

func TestExtract(t *testing.T) {
	e := newTestEngine(1)
	assert.Equal(t, []string{"$guid", "user"}, e.Extract("{{$guid}}/{{user}}/{{$guid}}"))
	assert.Empty(t, e.Extract("none"))
	assert.True(t, e.HasPlaceholders("a{{b}}"))
	assert.False(t, e.HasPlaceholders("a{b}"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "skip", Skip.String())
}
