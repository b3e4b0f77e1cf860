package validation

import (
	"regexp"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/urlutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
	"github.com/deploymenttheory/go-pipeline-composer/internal/template"
)

var (
	extractFormats = []string{"png", "jpg", "jpeg", "ppm", "pbm"}

	imageFormats = []string{
		"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp",
		"ppm", "pgm", "pbm", "ico", "heic", "avif", "pdf",
	}

	gravities = []string{
		"northwest", "north", "northeast",
		"west", "center", "east",
		"southwest", "south", "southeast",
	}

	ocrOutputFormats = []string{"txt", "pdf", "hocr", "tsv"}

	webhookMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

	dimensionParams = []string{"width", "height", "max_width", "max_height"}

	dangerousPatterns = []struct {
		label   string
		pattern *regexp.Regexp
	}{
		{"rm -rf", regexp.MustCompile(`\brm\s+-(rf|fr)\b`)},
		{"sudo", regexp.MustCompile(`\bsudo\b`)},
		{"su", regexp.MustCompile(`(^|[\s;&|])su\s`)},
		{"chmod 777", regexp.MustCompile(`\bchmod\s+(-R\s+)?777\b`)},
	}
)

// minScriptLength is the shortest custom script not reported as incomplete
const minScriptLength = 10

// validateStep dispatches on the step type
func (v *Validator) validateStep(step *composition.Step, r *Report) {
	switch step.Type {
	case composition.StepPDFExtract:
		requireParams(step, r, "input", "output_dir")
		checkEnum(step, r, "format", extractFormats, strings.ToLower)
		v.requireTool(step, r, "pdfimages")

	case composition.StepExcelExtract:
		requireParams(step, r, "input", "output_dir")
		v.requireTool(step, r, "unzip")

	case composition.StepConvert:
		requireParams(step, r, "format")
		checkEnum(step, r, "format", imageFormats, strings.ToLower)
		checkIntRange(step, r, "quality", 1, 100)
		v.requireTool(step, r, "convert")

	case composition.StepResize:
		requireDimension(step, r)
		for _, key := range dimensionParams {
			checkPositiveInt(step, r, key)
		}
		checkIntRange(step, r, "quality", 1, 100)
		v.requireTool(step, r, "convert")

	case composition.StepWatermark:
		requireParams(step, r, "watermark")
		checkEnum(step, r, "position", gravities, strings.ToLower)
		checkIntRange(step, r, "transparency", 0, 100)
		v.requireTool(step, r, "composite")

	case composition.StepOCR:
		requireParams(step, r, "input")
		checkEnum(step, r, "output_format", ocrOutputFormats, strings.ToLower)
		if v.requireTool(step, r, "tesseract") {
			v.checkLanguage(step, r)
		}

	case composition.StepWebhook:
		requireParams(step, r, "url")
		if target, ok := literalParam(step, "url"); ok {
			if err := urlutil.ValidateURL(target); err != nil {
				r.warnf(KindInvalidValue, step, "url '%s' should be an http:// or https:// URL (%v)", target, err)
			}
		}
		checkEnum(step, r, "method", webhookMethods, strings.ToUpper)
		if !v.tools().HasTool("curl") {
			r.warnf(KindOptionalDependency, step, "optional tool 'curl' not found in PATH; the step will be skipped at run time")
		}

	case composition.StepCustom:
		requireParams(step, r, "script")
		checkScript(step, r)
	}
}

func requireParams(step *composition.Step, r *Report, keys ...string) {
	for _, key := range keys {
		if strings.TrimSpace(step.Params.Value(key)) == "" {
			r.errorf(KindMissingParameter, step, "missing required parameter '%s'", key)
		}
	}
}

func requireDimension(step *composition.Step, r *Report) {
	for _, key := range dimensionParams {
		if strings.TrimSpace(step.Params.Value(key)) != "" {
			return
		}
	}
	r.errorf(KindMissingDimension, step, "at least one of %s is required", strings.Join(dimensionParams, ", "))
}

// literalParam returns the trimmed value of key when it is present, non-empty and free
// of template tokens. Templated values are only known at run time.
func literalParam(step *composition.Step, key string) (string, bool) {
	value, ok := step.Params.Get(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" || template.HasTokens(value) {
		return "", false
	}
	return value, true
}

func checkEnum(step *composition.Step, r *Report, key string, allowed []string, normalize func(string) string) {
	value, ok := literalParam(step, key)
	if !ok {
		return
	}
	normalized := normalize(value)
	for _, a := range allowed {
		if normalized == a {
			return
		}
	}
	r.warnf(KindUnknownValue, step, "unknown %s '%s' (expected one of: %s)", key, value, strings.Join(allowed, ", "))
}

func checkIntRange(step *composition.Step, r *Report, key string, lo, hi int) {
	value, ok := literalParam(step, key)
	if !ok {
		return
	}
	n, isInt := scope.ParseValue(value).Int()
	if !isInt || n < lo || n > hi {
		r.errorf(KindInvalidValue, step, "%s must be an integer in range %d..%d (got '%s')", key, lo, hi, value)
	}
}

func checkPositiveInt(step *composition.Step, r *Report, key string) {
	value, ok := literalParam(step, key)
	if !ok {
		return
	}
	n, isInt := scope.ParseValue(value).Int()
	if !isInt || n <= 0 {
		r.errorf(KindInvalidValue, step, "%s must be a positive integer (got '%s')", key, value)
	}
}

// requireTool reports a missing required tool and returns whether it is present
func (v *Validator) requireTool(step *composition.Step, r *Report, tool string) bool {
	if v.tools().HasTool(tool) {
		return true
	}
	r.errorf(KindMissingDependency, step, "required tool '%s' not found in PATH", tool)
	return false
}

func (v *Validator) checkLanguage(step *composition.Step, r *Report) {
	value, ok := literalParam(step, "language")
	if !ok {
		return
	}

	installed, err := v.languages().Languages()
	if err != nil {
		r.warnf(KindOptionalDependency, step, "could not list installed OCR languages: %v", err)
		return
	}

	known := make(map[string]bool, len(installed))
	for _, lang := range installed {
		known[lang] = true
	}

	// tesseract combines languages with '+', e.g. eng+deu
	for _, lang := range strings.Split(value, "+") {
		lang = strings.TrimSpace(lang)
		if lang != "" && !known[lang] {
			r.warnf(KindUnknownValue, step, "OCR language '%s' is not installed", lang)
		}
	}
}

func checkScript(step *composition.Step, r *Report) {
	script := strings.TrimSpace(step.Params.Value("script"))
	if script == "" {
		return
	}

	if len(script) < minScriptLength {
		r.warnf(KindSuspiciousScript, step, "script looks incomplete: '%s'", script)
	}

	var matched []string
	for _, d := range dangerousPatterns {
		if d.pattern.MatchString(script) {
			matched = append(matched, d.label)
		}
	}
	if len(matched) > 0 {
		r.warnf(KindSuspiciousScript, step, "script contains potentially dangerous commands: %s", strings.Join(matched, ", "))
	}
}
