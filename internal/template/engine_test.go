package template

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSubstitute(t *testing.T) {
	s := scope.New(scope.TemplateScope)
	s.Set("pdf_name", "report")
	s.Set("output_dir", "/out")
	s.SetInt("counter", 1)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no tokens", "plain text", "plain text"},
		{"plain token", "{output_dir}/{pdf_name}.png", "/out/report.png"},
		{"missing variable deleted", "{missing_var}", ""},
		{"zero padded", "{counter:03d}", "001"},
		{"width only", "[{counter:3d}]", "[  1]"},
		{"bare d", "{counter:d}", "1"},
		{"missing formatted defaults to zero", "{nothing:04d}", "0000"},
		{"mixed", "{pdf_name}_{counter:02d}.jpg", "report_01.jpg"},
		{"case insensitive", "{PDF_NAME}", "report"},
		{"literal braces kept", "{ not a token }", "{ not a token }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, s))
		})
	}
}

func TestSubstituteCounterValues(t *testing.T) {
	s := scope.New("run")

	s.Set("counter", "1")
	assert.Equal(t, "001", Substitute("{counter:03d}", s))

	s.Set("counter", "42")
	assert.Equal(t, "042", Substitute("{counter:03d}", s))

	s.Set("counter", "not-a-number")
	assert.Equal(t, "000", Substitute("{counter:03d}", s))
}

func TestSubstituteUnknownFormatIsLenient(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.SetLogger(zap.New(core))()

	s := scope.New("run")
	s.Set("quality", "85")

	assert.Equal(t, "q=85", Substitute("q={quality:.2f}", s))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, ".2f", logs.All()[0].ContextMap()["format"])
}

func TestSubstituteDoesNotRecurse(t *testing.T) {
	s := scope.New("run")
	s.Set("a", "{b}")
	s.Set("b", "loop")

	assert.Equal(t, "{b}", Substitute("{a}", s))
}

func TestSubstituteParams(t *testing.T) {
	s := scope.New("run")
	s.Set("output_dir", "/out")

	params := map[string]string{"output": "{output_dir}/x.png", "width": "800"}
	got := SubstituteParams(params, s)

	assert.Equal(t, map[string]string{"output": "/out/x.png", "width": "800"}, got)
	assert.Equal(t, "{output_dir}/x.png", params["output"], "input map is not modified")
}

func TestExtractVariables(t *testing.T) {
	assert.Nil(t, ExtractVariables("no tokens"))
	assert.Equal(t,
		[]string{"output_dir", "pdf_name", "counter"},
		ExtractVariables("{output_dir}/{pdf_name}_{counter:03d}_{PDF_NAME}.png"))
	assert.True(t, HasTokens("{width}"))
	assert.False(t, HasTokens("800"))
}

func TestInitDefaults(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	dir := t.TempDir()
	pdf := filepath.Join(dir, "Invoice.PDF")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o644))

	s := scope.New(scope.TemplateScope)
	InitDefaults(s, pdf, "/out", "/tmp/pc")

	assert.Equal(t, pdf, s.Get("workflow_input"))
	assert.Equal(t, "/out", s.Get("output_dir"))
	assert.Equal(t, "/tmp/pc", s.Get("temp_dir"))
	assert.Equal(t, "20240309_140507", s.Get("timestamp"))
	assert.Equal(t, "20240309", s.Get("date"))
	assert.Equal(t, "140507", s.Get("time"))
	assert.Equal(t, "1", s.Get("counter"))
	assert.Equal(t, "Invoice.PDF", s.Get("input_basename"))
	assert.Equal(t, "Invoice", s.Get("input_name"))
	assert.Equal(t, "PDF", s.Get("input_ext"))
	assert.Equal(t, "Invoice", s.Get("pdf_name"))
	assert.False(t, s.Has("excel_name"))
}

func TestInitDefaultsExcelAndMissingInput(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "sheet.xlsx")
	require.NoError(t, os.WriteFile(xlsx, []byte("PK"), 0o644))

	s := scope.New("a")
	InitDefaults(s, xlsx, "/out", "/tmp")
	assert.Equal(t, "sheet", s.Get("excel_name"))
	assert.False(t, s.Has("pdf_name"))

	missing := scope.New("b")
	InitDefaults(missing, filepath.Join(dir, "nope.pdf"), "/out", "/tmp")
	assert.False(t, missing.Has("input_name"))
	assert.False(t, missing.Has("pdf_name"))
	assert.Equal(t, "1", missing.Get("counter"))
}

func TestIncrement(t *testing.T) {
	s := scope.New("run")
	s.SetInt("counter", 1)

	assert.Equal(t, 2, Increment(s, "counter", 1))
	assert.Equal(t, "002", Substitute("{counter:03d}", s))
	assert.Equal(t, 10, Increment(s, "extracted_count", 10))
}
