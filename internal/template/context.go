package template

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
)

// Variables workflow authors may reference without binding them first
var KnownVariables = []string{
	"workflow_input",
	"workflow_name",
	"output_dir",
	"temp_dir",
	"timestamp",
	"date",
	"time",
	"counter",
	"pdf_name",
	"excel_name",
	"original_name",
	"format",
	"width",
	"height",
	"quality",
	"extracted_count",
	"processed_count",
	"step_name",
	"failed_step",
	"input_basename",
	"input_name",
	"input_ext",
}

// now is swapped in tests
var now = time.Now

// InitDefaults seeds s with the standard variables for one run.
// Input-derived names are only set when inputPath names an existing file.
func InitDefaults(s *scope.Scope, inputPath, outputDir, tempDir string) {
	t := now()

	s.Set("workflow_input", inputPath)
	s.Set("output_dir", outputDir)
	s.Set("temp_dir", tempDir)
	s.Set("timestamp", t.Format("20060102_150405"))
	s.Set("date", t.Format("20060102"))
	s.Set("time", t.Format("150405"))
	s.SetInt("counter", 1)

	if inputPath == "" || !fsutil.FileExists(inputPath) {
		return
	}

	base := filepath.Base(inputPath)
	name := fsutil.GetFileNameWithoutExt(base)
	ext := strings.TrimPrefix(fsutil.GetExtension(base), ".")

	s.Set("input_basename", base)
	s.Set("input_name", name)
	s.Set("input_ext", ext)

	switch strings.ToLower(ext) {
	case "pdf":
		s.Set("pdf_name", name)
	case "xlsx", "xls":
		s.Set("excel_name", name)
	}
}

// Increment adds by to the counter called name and returns the new value
func Increment(s *scope.Scope, name string, by int) int {
	return s.Increment(name, by)
}
