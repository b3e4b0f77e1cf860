package condition

import (
	"testing"

	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ctxWith(values map[string]string) *scope.Scope {
	return scope.NewWithDefaults(scope.ConditionScope, values)
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(ExecuteAnyway)

	tests := []struct {
		name      string
		condition string
		ctx       map[string]string
		want      bool
		form      Form
	}{
		{"empty", "", nil, true, FormEmpty},
		{"whitespace", "   ", nil, true, FormEmpty},
		{"literal numeric", "5 > 3", nil, true, FormNumeric},
		{"variable zero", "extracted_count > 0", map[string]string{"extracted_count": "0"}, false, FormNumeric},
		{"variable positive", "extracted_count > 0", map[string]string{"extracted_count": "4"}, true, FormNumeric},
		{"braced variable", "{processed_count} >= 2", map[string]string{"processed_count": "2"}, true, FormNumeric},
		{"case insensitive name", "Extracted_Count != 0", map[string]string{"extracted_count": "0"}, false, FormNumeric},
		{"single equals numeric", "05 = 5", nil, true, FormNumeric},
		{"less or equal", "3 <= 2", nil, false, FormNumeric},
		{"negative", "-1 < 0", nil, true, FormNumeric},
		{"string equal", "format == png", map[string]string{"format": "png"}, true, FormString},
		{"string quoted", `format = "jpg"`, map[string]string{"format": "jpg"}, true, FormString},
		{"string not equal", "format != 'png'", map[string]string{"format": "png"}, false, FormString},
		{"bool true", "TRUE", nil, true, FormBoolean},
		{"bool enabled", "enabled", nil, true, FormBoolean},
		{"bool off", "off", nil, false, FormBoolean},
		{"bool via variable", "ocr_enabled", map[string]string{"ocr_enabled": "no"}, false, FormBoolean},
		{"unparsable", "gibberish(((", nil, true, FormUnparsable},
		{"ordering on text", "format > 3", map[string]string{"format": "png"}, true, FormUnparsable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.EvaluateDetailed(tt.condition, ctxWith(tt.ctx))
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, tt.form, res.Form)
			assert.Equal(t, tt.want, e.Evaluate(tt.condition, ctxWith(tt.ctx)))
		})
	}
}

func TestEvaluateUnparsableRecordsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.SetLogger(zap.New(core))()

	res := NewEvaluator(ExecuteAnyway).EvaluateDetailed("gibberish(((", scope.New("ctx"))

	assert.True(t, res.Value)
	assert.NotEmpty(t, res.Warning)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gibberish(((", logs.All()[0].ContextMap()["condition"])
}

func TestEvaluateSkipPolicy(t *testing.T) {
	e := NewEvaluator(SkipStep)

	assert.False(t, e.Evaluate("gibberish(((", scope.New("ctx")))
	assert.True(t, e.Evaluate("", scope.New("ctx")), "empty conditions always run")
	assert.True(t, e.Evaluate("1 == 1", scope.New("ctx")))
}

func TestExpand(t *testing.T) {
	ctx := ctxWith(map[string]string{
		"counter":       "3",
		"counter_total": "10",
		"a":             "b",
		"b":             "never",
	})

	assert.Equal(t, "3 < 10", Expand("counter < counter_total", ctx))
	assert.Equal(t, "3 < 10", Expand("{counter} < {COUNTER_TOTAL}", ctx))
	assert.Equal(t, "b", Expand("a", ctx), "substitution is a single pass")
	assert.Equal(t, "recounter", Expand("recounter", ctx), "only whole words are replaced")
	assert.Equal(t, "x == y", Expand("x == y", nil))
}

func TestExpandReusesPattern(t *testing.T) {
	first := keyPattern([]string{"count", "count_total"})
	second := keyPattern([]string{"count_total", "count"})
	assert.Same(t, first, second, "one compiled pattern per key set")
	assert.NotSame(t, first, keyPattern([]string{"count"}))

	ctx := ctxWith(map[string]string{"count": "2", "count_total": "9"})
	for i := 0; i < 3; i++ {
		assert.Equal(t, "9 > 2", Expand("{count_total} > count", ctx))
	}
	ctx.Set("count", "5")
	assert.Equal(t, "9 > 5", Expand("count_total > {COUNT}", ctx))
}

func TestCheck(t *testing.T) {
	valid := []string{
		"",
		"5 > 3",
		"extracted_count > 0",
		"{extracted_count} >= 1",
		"format == png",
		`format != "jpg"`,
		"yes",
		"ocr_enabled",
	}
	for _, c := range valid {
		assert.NoError(t, Check(c), c)
	}

	invalid := []string{
		"gibberish(((",
		"format > 'png'",
		"a && b",
		"x ==",
	}
	for _, c := range invalid {
		assert.ErrorIs(t, Check(c), ErrUnparsable, c)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ExecuteAnyway, p)

	p, err = ParsePolicy("Skip")
	require.NoError(t, err)
	assert.Equal(t, SkipStep, p)

	_, err = ParsePolicy("maybe")
	assert.Error(t, err)
}
