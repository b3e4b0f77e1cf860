package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTessdataLister(t *testing.T) {
	t.Setenv("TESSDATA_PREFIX", "")

	first := t.TempDir()
	second := t.TempDir()
	for dir, files := range map[string][]string{
		first:  {"eng.traineddata", "osd.traineddata", "readme.txt"},
		second: {"deu.traineddata", "eng.traineddata"},
	} {
		for _, f := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
		}
	}

	langs, err := TessdataLister{Dirs: []string{first, second, filepath.Join(first, "missing")}}.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"deu", "eng", "osd"}, langs)
}

func TestTessdataListerPrefix(t *testing.T) {
	prefix := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "tessdata"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "tessdata", "fra.traineddata"), nil, 0o644))
	t.Setenv("TESSDATA_PREFIX", prefix)

	langs, err := TessdataLister{}.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"fra"}, langs)
}

func TestToolCheckers(t *testing.T) {
	assert.True(t, ToolSet{"convert": true}.HasTool("convert"))
	assert.False(t, ToolSet{}.HasTool("convert"))
	assert.False(t, PathToolChecker{}.HasTool("definitely-not-a-real-tool-name"))
}

func TestParseLanguageList(t *testing.T) {
	out := []byte(`List of available languages in "/opt/tess/tessdata/" (4):
deu
eng
osd
script/Latin
Warning: Invalid resolution 0 dpi.
`)
	assert.Equal(t, []string{"deu", "eng", "osd", "script/Latin"}, parseLanguageList(out))
	assert.Empty(t, parseLanguageList(nil))
}

func TestTesseractLister(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the tesseract executable")
	}

	script := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'List of available languages (2):'\necho jpn\necho eng\n"), 0o755))

	lister := &TesseractLister{Command: script, Fallback: StaticLanguages{"deu"}}
	langs, err := lister.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "jpn"}, langs)
}

func TestTesseractListerFallback(t *testing.T) {
	lister := &TesseractLister{Command: "definitely-not-a-real-tool-name", Fallback: StaticLanguages{"deu"}}
	langs, err := lister.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"deu"}, langs)

	_, err = (&TesseractLister{Command: "definitely-not-a-real-tool-name"}).Languages()
	assert.Error(t, err)
}
